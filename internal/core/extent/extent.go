// Package extent computes the map window for a set of stations.
//
// Every path ends in Clamp, so callers always receive a non-degenerate box
// inside the Plate Carrée domain, whatever the input.
package extent

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

const (
	// SafeLon and SafeLat bound every returned extent.
	SafeLon = 179.999
	SafeLat = 89.9
	// MinSpan is the smallest width or height of a returned extent, in degrees.
	MinSpan = 0.01
)

// Clamp keeps b inside [-SafeLon, SafeLon] x [-SafeLat, SafeLat] and forces
// max > min on both axes. It never fails.
func Clamp(b domain.Bounds) domain.Bounds {
	b.MinLon, b.MaxLon = clampAxis(b.MinLon, b.MaxLon, SafeLon)
	b.MinLat, b.MaxLat = clampAxis(b.MinLat, b.MaxLat, SafeLat)
	return b
}

func clampAxis(lo, hi, limit float64) (float64, float64) {
	if math.IsNaN(lo) {
		lo = -limit
	}
	if math.IsNaN(hi) {
		hi = limit
	}
	lo = math.Max(-limit, math.Min(limit, lo))
	hi = math.Max(-limit, math.Min(limit, hi))
	if hi <= lo {
		hi = lo + MinSpan
		if hi > limit {
			lo, hi = limit-MinSpan, limit
		}
	}
	return lo, hi
}

// AutoFit fits the points and pads each axis by marginPct percent of that
// axis' own span. A zero span is first widened by MinSpan on each side.
func AutoFit(points []domain.GeoPoint, marginPct float64) (domain.Bounds, error) {
	if len(points) == 0 {
		return domain.Bounds{}, domain.ErrEmptyTable
	}
	b := fit(points)
	if b.Min[0] == b.Max[0] {
		b.Min[0], b.Max[0] = b.Min[0]-MinSpan, b.Max[0]+MinSpan
	}
	if b.Min[1] == b.Max[1] {
		b.Min[1], b.Max[1] = b.Min[1]-MinSpan, b.Max[1]+MinSpan
	}

	pct := math.Max(0, marginPct) / 100
	mx := (b.Max[0] - b.Min[0]) * pct
	my := (b.Max[1] - b.Min[1]) * pct
	b.Min = orb.Point{b.Min[0] - mx, b.Min[1] - my}
	b.Max = orb.Point{b.Max[0] + mx, b.Max[1] + my}
	return Clamp(domain.BoundsFromOrb(b)), nil
}

// Buffered expands a declared box outward by bufferDeg after snapping it to
// whole degrees (floor of the minima, ceiling of the maxima), then limits it
// to the valid coordinate range.
func Buffered(box domain.Bounds, bufferDeg float64) domain.Bounds {
	buf := math.Max(0, bufferDeg)
	out := domain.Bounds{
		MinLon: math.Max(-180, math.Floor(box.MinLon)-buf),
		MaxLon: math.Min(180, math.Ceil(box.MaxLon)+buf),
		MinLat: math.Max(-90, math.Floor(box.MinLat)-buf),
		MaxLat: math.Min(90, math.Ceil(box.MaxLat)+buf),
	}
	return Clamp(out)
}

// BufferedFromPoints uses the points' bounding box as the declared box.
func BufferedFromPoints(points []domain.GeoPoint, bufferDeg float64) (domain.Bounds, error) {
	if len(points) == 0 {
		return domain.Bounds{}, domain.ErrEmptyTable
	}
	return Buffered(domain.BoundsFromOrb(fit(points)), bufferDeg), nil
}

func fit(points []domain.GeoPoint) orb.Bound {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = p.Orb()
	}
	return mp.Bound()
}
