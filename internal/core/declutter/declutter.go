// Package declutter spreads overlapping map labels apart.
package declutter

import (
	"github.com/paulmach/orb"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Measurer reports the drawn size of a label's text in degrees (lon, lat).
type Measurer interface {
	Measure(text string) (w, h float64)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(text string) (float64, float64)

func (f MeasurerFunc) Measure(text string) (float64, float64) { return f(text) }

// Layout moves labels in place to reduce overlap. Label order, text, target
// and anchor are never changed; only Position is.
type Layout interface {
	Declutter(labels []domain.Label, m Measurer) domain.DeclutterStats
}

// Repulsion defaults.
const (
	DefaultMaxIter = 200
	DefaultStep    = 0.002
	DefaultPadX    = 1.05
	DefaultPadY    = 1.2
)

// Repulsion is an iterative pairwise repulsion layout. Each pass measures
// every label, pads the boxes about their centres and, for each overlapping
// pair, pushes both labels apart along the line between their positions by
// Step times that vector. Coincident labels use Degenerate as the vector.
// A pass that moves nothing ends the run.
type Repulsion struct {
	MaxIter    int
	Step       float64
	PadX       float64
	PadY       float64
	Degenerate orb.Point // (dlon, dlat)
}

// NewRepulsion returns a Repulsion with the default parameters.
func NewRepulsion(maxIter int) *Repulsion {
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	return &Repulsion{
		MaxIter:    maxIter,
		Step:       DefaultStep,
		PadX:       DefaultPadX,
		PadY:       DefaultPadY,
		Degenerate: orb.Point{0.0005, 0.0005},
	}
}

// Declutter implements Layout. Running out of iterations is not an error:
// the labels keep their best-effort positions and Converged is false.
func (r *Repulsion) Declutter(labels []domain.Label, m Measurer) domain.DeclutterStats {
	if len(labels) < 2 {
		return domain.DeclutterStats{Converged: true}
	}

	var stats domain.DeclutterStats
	boxes := make([]orb.Bound, len(labels))
	for stats.Iterations < r.MaxIter {
		stats.Iterations++
		for i, l := range labels {
			boxes[i] = r.box(l, m)
		}

		moved := false
		for i := range labels {
			for j := i + 1; j < len(labels); j++ {
				if !boxes[i].Intersects(boxes[j]) {
					continue
				}
				pi, pj := labels[i].Position, labels[j].Position
				dx, dy := pi.Lon-pj.Lon, pi.Lat-pj.Lat
				if dx == 0 && dy == 0 {
					dx, dy = r.Degenerate[0], r.Degenerate[1]
				}
				labels[i].Position = domain.GeoPoint{Lat: pi.Lat + r.Step*dy, Lon: pi.Lon + r.Step*dx}
				labels[j].Position = domain.GeoPoint{Lat: pj.Lat - r.Step*dy, Lon: pj.Lon - r.Step*dx}
				moved = true
			}
		}
		if !moved {
			stats.Converged = true
			break
		}
	}
	return stats
}

// box is the label's text extent with its lower-left corner at Position,
// scaled about its centre by the padding factors.
func (r *Repulsion) box(l domain.Label, m Measurer) orb.Bound {
	w, h := m.Measure(l.Text)
	c := orb.Point{l.Position.Lon + w/2, l.Position.Lat + h/2}
	hw, hh := w*r.PadX/2, h*r.PadY/2
	return orb.Bound{
		Min: orb.Point{c[0] - hw, c[1] - hh},
		Max: orb.Point{c[0] + hw, c[1] + hh},
	}
}

// Overlaps counts label pairs whose unpadded boxes intersect.
func Overlaps(labels []domain.Label, m Measurer) int {
	boxes := make([]orb.Bound, len(labels))
	for i, l := range labels {
		w, h := m.Measure(l.Text)
		lo := l.Position.Orb()
		boxes[i] = orb.Bound{Min: lo, Max: orb.Point{lo[0] + w, lo[1] + h}}
	}
	n := 0
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Intersects(boxes[j]) {
				n++
			}
		}
	}
	return n
}
