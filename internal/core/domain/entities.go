package domain

import (
	"fmt"
	"strings"
	"time"
)

// Format is the coordinate encoding selected by the caller.
type Format string

const (
	FormatDMS            Format = "DMS"
	FormatDecimalDegrees Format = "Decimal Degrees"
	FormatUTM            Format = "UTM"
)

// Formats lists the supported formats in the order they are offered to users.
var Formats = []Format{FormatDMS, FormatDecimalDegrees, FormatUTM}

// ParseFormat matches the literal format names. Matching is case-insensitive
// so "utm" and "decimal degrees" are accepted from query strings.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of DMS, Decimal Degrees, UTM)", ErrUnknownFormat, s)
}

// Axis distinguishes latitude from longitude where bounds differ.
type Axis string

const (
	AxisLat Axis = "lat"
	AxisLon Axis = "lon"
)

// Limit returns the absolute degree bound for the axis.
func (a Axis) Limit() float64 {
	if a == AxisLon {
		return 180
	}
	return 90
}

// ParseAxis accepts "lat"/"latitude" and "lon"/"longitude".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lat", "latitude", "":
		return AxisLat, nil
	case "lon", "long", "longitude":
		return AxisLon, nil
	}
	return "", fmt.Errorf("unknown axis %q", s)
}

// Station is a normalized row: the caller's cells plus the derived coordinate.
type Station struct {
	Index int      `json:"index"` // row index in the source table
	Cells []Cell   `json:"cells"`
	Coord GeoPoint `json:"coord"`
}

// NormalizedTable is the clean working set produced by the normalizer.
type NormalizedTable struct {
	Format    Format    `json:"format"`
	Columns   []string  `json:"columns"` // source columns; Lat_DD/Lon_DD are carried in Coord
	LatColumn string    `json:"lat_column,omitempty"`
	LonColumn string    `json:"lon_column,omitempty"`
	Stations  []Station `json:"stations"`
	Dropped   []int     `json:"dropped"` // source row indices that did not resolve
	DMMFixed  int       `json:"dmm_fixed"`
}

// Column names appended by Table().
const (
	ColumnLatDD = "Lat_DD"
	ColumnLonDD = "Lon_DD"
)

// Points returns the station coordinates in order.
func (n *NormalizedTable) Points() []GeoPoint {
	out := make([]GeoPoint, len(n.Stations))
	for i, s := range n.Stations {
		out[i] = s.Coord
	}
	return out
}

// Table flattens the working set into a table with Lat_DD and Lon_DD appended.
func (n *NormalizedTable) Table() Table {
	cols := append(append([]string(nil), n.Columns...), ColumnLatDD, ColumnLonDD)
	rows := make([][]Cell, len(n.Stations))
	for i, s := range n.Stations {
		row := make([]Cell, len(n.Columns), len(n.Columns)+2)
		copy(row, s.Cells)
		rows[i] = append(row, NumberCell(s.Coord.Lat), NumberCell(s.Coord.Lon))
	}
	return Table{Columns: cols, Rows: rows}
}

// Value returns the station's cell for the named column, or an empty cell.
func (n *NormalizedTable) Value(station int, column string) Cell {
	for i, c := range n.Columns {
		if c == column {
			cells := n.Stations[station].Cells
			if i < len(cells) {
				return cells[i]
			}
			break
		}
	}
	return Cell{}
}

// Cluster groups station positions (indices into NormalizedTable.Stations).
type Cluster struct {
	ID       int      `json:"id"`
	Members  []int    `json:"members"`
	Centroid GeoPoint `json:"centroid"`
}

// Size returns the member count.
func (c Cluster) Size() int { return len(c.Members) }

// Representative is one row of the per-cluster table handed to the renderer.
type Representative struct {
	ClusterID int     `json:"cluster_id"`
	Size      int     `json:"cluster_size"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// Inset is a zoomed extent for one of the largest clusters.
type Inset struct {
	ClusterID int    `json:"cluster_id"`
	Size      int    `json:"size"`
	Bounds    Bounds `json:"bounds"`
}

// LabelTarget says what a label refers to.
type LabelTarget string

const (
	LabelStation LabelTarget = "station"
	LabelCluster LabelTarget = "cluster"
)

// Label is a placed text label. Anchor is the point it annotates (plus offset);
// Position is where the renderer should draw it after decluttering.
type Label struct {
	Text     string      `json:"text"`
	Target   LabelTarget `json:"target"`
	Ref      int         `json:"ref"` // station position or cluster id
	Anchor   GeoPoint    `json:"anchor"`
	Position GeoPoint    `json:"position"`
}

// PlanConfig is the immutable settings bundle for one pipeline run.
type PlanConfig struct {
	Format     Format `json:"format"`
	LatColumn  string `json:"lat_column,omitempty"`
	LonColumn  string `json:"lon_column,omitempty"`
	AutoFixDMM bool   `json:"auto_fix_dmm"`

	AutoExtent bool    `json:"auto_extent"`
	MarginPct  float64 `json:"margin_pct"`
	BufferDeg  float64 `json:"buffer_deg"`
	// Manual extent corners, DMS text (used when AutoExtent is false).
	Left   string `json:"left,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Top    string `json:"top,omitempty"`

	Cluster     bool    `json:"cluster"`
	ClusterKm   float64 `json:"cluster_km"`
	MaxInsets   int     `json:"max_insets"`
	InsetPadDeg float64 `json:"inset_pad_deg"`

	Labels           bool    `json:"labels"`
	LabelColumn      string  `json:"label_column,omitempty"`
	LabelDX          float64 `json:"label_dx"`
	LabelDY          float64 `json:"label_dy"`
	FontSize         float64 `json:"font_size"`
	Page             string  `json:"page"`
	Orientation      string  `json:"orientation"`
	DeclutterMaxIter int     `json:"declutter_max_iter"`
}

// MapPlan is everything the renderer needs for one dataset.
type MapPlan struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	Config          PlanConfig       `json:"config"`
	Normalized      *NormalizedTable `json:"normalized"`
	Bounds          Bounds           `json:"bounds"`
	Clusters        []Cluster        `json:"clusters,omitempty"`
	Representatives []Representative `json:"representatives,omitempty"`
	Insets          []Inset          `json:"insets,omitempty"`
	Labels          []Label          `json:"labels,omitempty"`
	Declutter       DeclutterStats   `json:"declutter"`
	Duration        time.Duration    `json:"duration_ns"`
}

// DeclutterStats summarises a label layout pass.
type DeclutterStats struct {
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// PlanEvent is published when a plan finishes or fails.
type PlanEvent struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"` // "completed" | "failed"
	Time       time.Time `json:"time"`
	Stations   int       `json:"stations"`
	Dropped    int       `json:"dropped"`
	Clusters   int       `json:"clusters"`
	Bounds     *Bounds   `json:"bounds,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// PlanRequest is an asynchronous plan job.
type PlanRequest struct {
	ID     string     `json:"id"`
	Table  Table      `json:"table"`
	Config PlanConfig `json:"config"`
}
