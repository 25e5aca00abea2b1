package coords

import (
	"math"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Precision of normalized coordinates: 4 decimal places, about 11 m.
const precision = 1e4

// Options selects how a table is normalized.
type Options struct {
	Format     domain.Format
	LatColumn  string // optional explicit column; aliases are used when empty
	LonColumn  string
	AutoFixDMM bool
	Projector  Projector // defaults to UTMProjector
}

// Normalize converts the latitude/longitude columns of t into clipped,
// rounded decimal degrees. Rows that do not resolve on both axes are dropped
// and listed in Dropped. The input table is never modified.
//
// Errors: ErrUnknownFormat and ErrEmptyTable for bad input, *ColumnError when
// no lat/lon column matches, *UTMColumnsError when a UTM table has fewer than
// four columns, and *ConversionError when no row survives.
func Normalize(t domain.Table, opts Options) (*domain.NormalizedTable, error) {
	f, err := domain.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts.Format = f
	if t.Len() == 0 {
		return nil, domain.ErrEmptyTable
	}
	if opts.Projector == nil {
		opts.Projector = UTMProjector
	}

	out, err := convert(t, opts)
	if err != nil {
		return nil, err
	}
	if len(out.Stations) == 0 {
		return nil, &domain.ConversionError{
			Format:          opts.Format,
			Rows:            t.Len(),
			SuggestedFormat: suggestFormat(t, opts),
		}
	}
	return out, nil
}

func convert(t domain.Table, opts Options) (*domain.NormalizedTable, error) {
	out := &domain.NormalizedTable{
		Format:  opts.Format,
		Columns: append([]string(nil), t.Columns...),
	}

	var resolve func(row []domain.Cell) (domain.GeoPoint, int, bool)
	switch opts.Format {
	case domain.FormatUTM:
		if len(t.Columns) < 4 {
			return nil, &domain.UTMColumnsError{Columns: len(t.Columns)}
		}
		resolve = func(row []domain.Cell) (domain.GeoPoint, int, bool) {
			p, err := ParseUTMRow(row, opts.Projector)
			return p, 0, err == nil
		}
	default:
		latIdx, lonIdx, err := ResolveColumns(t.Columns, opts.LatColumn, opts.LonColumn)
		if err != nil {
			return nil, err
		}
		out.LatColumn, out.LonColumn = t.Columns[latIdx], t.Columns[lonIdx]
		resolve = func(row []domain.Cell) (domain.GeoPoint, int, bool) {
			lat := ParseCell(cellAt(row, latIdx), opts.Format, domain.AxisLat, opts.AutoFixDMM)
			lon := ParseCell(cellAt(row, lonIdx), opts.Format, domain.AxisLon, opts.AutoFixDMM)
			fixed := 0
			if lat.DMM {
				fixed++
			}
			if lon.DMM {
				fixed++
			}
			return domain.GeoPoint{Lat: lat.Deg, Lon: lon.Deg}, fixed, lat.OK && lon.OK
		}
	}

	for i, row := range t.Rows {
		p, fixed, ok := resolve(row)
		if !ok {
			out.Dropped = append(out.Dropped, i)
			continue
		}
		out.DMMFixed += fixed
		out.Stations = append(out.Stations, domain.Station{
			Index: i,
			Cells: append([]domain.Cell(nil), row...),
			Coord: domain.GeoPoint{
				Lat: Round4(clip(p.Lat, 90)),
				Lon: Round4(clip(p.Lon, 180)),
			},
		})
	}
	return out, nil
}

// suggestFormat returns the other format resolving the most rows, if any.
func suggestFormat(t domain.Table, opts Options) domain.Format {
	var (
		best  domain.Format
		count int
	)
	for _, f := range domain.Formats {
		if f == opts.Format {
			continue
		}
		alt := opts
		alt.Format = f
		out, err := convert(t, alt)
		if err != nil {
			continue
		}
		if len(out.Stations) > count {
			best, count = f, len(out.Stations)
		}
	}
	return best
}

func cellAt(row []domain.Cell, i int) domain.Cell {
	if i < 0 || i >= len(row) {
		return domain.Cell{}
	}
	return row[i]
}

func clip(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// Round4 rounds to the normalized coordinate precision.
func Round4(v float64) float64 {
	return math.Round(v*precision) / precision
}
