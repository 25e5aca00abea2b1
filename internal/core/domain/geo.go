package domain

import "github.com/paulmach/orb"

// GeoPoint represents a geographic coordinate (WGS 84) in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Orb returns the point in orb's (lon, lat) axis order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Bounds represents a geographic bounding box. The JSON field order mirrors
// the (min_lon, max_lon, min_lat, max_lat) extent tuple handed to renderers.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
}

// Tuple returns the extent as (min_lon, max_lon, min_lat, max_lat).
func (b Bounds) Tuple() [4]float64 {
	return [4]float64{b.MinLon, b.MaxLon, b.MinLat, b.MaxLat}
}

// Orb converts the bounds into an orb.Bound.
func (b Bounds) Orb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// BoundsFromOrb converts an orb.Bound into Bounds.
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		MinLon: b.Min[0],
		MaxLon: b.Max[0],
		MinLat: b.Min[1],
		MaxLat: b.Max[1],
	}
}

// LonSpan returns MaxLon - MinLon.
func (b Bounds) LonSpan() float64 { return b.MaxLon - b.MinLon }

// LatSpan returns MaxLat - MinLat.
func (b Bounds) LatSpan() float64 { return b.MaxLat - b.MinLat }
