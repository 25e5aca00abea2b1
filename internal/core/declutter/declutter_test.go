package declutter_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/declutter"
	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// fixed measures every label as a 1° x 0.5° box.
var fixed = declutter.MeasurerFunc(func(string) (float64, float64) { return 1, 0.5 })

func label(text string, lat, lon float64) domain.Label {
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	return domain.Label{Text: text, Anchor: p, Position: p}
}

func TestRepulsion_SeparatesCoincidentLabels(t *testing.T) {
	labels := []domain.Label{label("A", 10, 20), label("B", 10, 20)}
	declutter.NewRepulsion(0).Declutter(labels, fixed)

	if labels[0].Position == labels[1].Position {
		t.Fatalf("labels still coincide at %+v", labels[0].Position)
	}
	// The first label moves along +degenerate, the second along -degenerate.
	if !(labels[0].Position.Lon > labels[1].Position.Lon) || !(labels[0].Position.Lat > labels[1].Position.Lat) {
		t.Errorf("unexpected directions: %+v vs %+v", labels[0].Position, labels[1].Position)
	}
	if labels[0].Text != "A" || labels[1].Text != "B" {
		t.Error("label order changed")
	}
	for _, l := range labels {
		if l.Anchor != (domain.GeoPoint{Lat: 10, Lon: 20}) {
			t.Errorf("anchor changed to %+v", l.Anchor)
		}
	}
}

func TestRepulsion_NoOpOnCleanInput(t *testing.T) {
	labels := []domain.Label{label("A", 0, 0), label("B", 5, 5), label("C", -5, 10)}
	before := append([]domain.Label(nil), labels...)

	stats := declutter.NewRepulsion(0).Declutter(labels, fixed)

	if !reflect.DeepEqual(labels, before) {
		t.Errorf("clean input was modified: %+v", labels)
	}
	if !stats.Converged || stats.Iterations != 1 {
		t.Errorf("stats = %+v, want converged after 1 pass", stats)
	}
}

func TestRepulsion_BoundedIterations(t *testing.T) {
	labels := []domain.Label{label("A", 0, 0), label("B", 0, 0.1), label("C", 0.1, 0)}
	stats := declutter.NewRepulsion(7).Declutter(labels, fixed)
	if stats.Iterations != 7 || stats.Converged {
		t.Errorf("stats = %+v, want 7 iterations without convergence", stats)
	}
	for _, l := range labels {
		if math.IsNaN(l.Position.Lat) || math.IsNaN(l.Position.Lon) {
			t.Errorf("position became NaN: %+v", l)
		}
	}
}

func TestRepulsion_ReducesOverlap(t *testing.T) {
	small := declutter.MeasurerFunc(func(string) (float64, float64) { return 0.02, 0.01 })
	labels := []domain.Label{label("A", 0, 0), label("B", 0.005, 0.01), label("C", -0.005, -0.01)}
	r := declutter.NewRepulsion(0)
	r.Step = 0.2

	before := declutter.Overlaps(labels, small)
	stats := r.Declutter(labels, small)
	after := declutter.Overlaps(labels, small)

	if after >= before {
		t.Errorf("overlaps %d -> %d, want fewer", before, after)
	}
	if !stats.Converged {
		t.Errorf("expected convergence, got %+v", stats)
	}
}

func TestRepulsion_Deterministic(t *testing.T) {
	run := func() []domain.Label {
		labels := []domain.Label{label("A", 1, 1), label("B", 1, 1), label("C", 1.1, 1.2), label("D", 1, 1)}
		declutter.NewRepulsion(50).Declutter(labels, fixed)
		return labels
	}
	if !reflect.DeepEqual(run(), run()) {
		t.Error("layout is not deterministic")
	}
}

func TestRepulsion_FewLabels(t *testing.T) {
	stats := declutter.NewRepulsion(0).Declutter([]domain.Label{label("A", 0, 0)}, fixed)
	if !stats.Converged || stats.Iterations != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPageMeasurer(t *testing.T) {
	// 72 pt per inch on a 10 in x 10 in region would be convenient; use
	// Letter landscape (11 x 8.5 in) over an extent of 11° x 8.5°.
	b := domain.Bounds{MinLon: 0, MaxLon: 11, MinLat: 0, MaxLat: 8.5}
	m, err := declutter.NewPageMeasurer(b, "Letter", "landscape", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := m.Measure("abcd")
	// 4 glyphs * 0.6 em * 10 pt = 24 pt wide, 1.2 * 10 = 12 pt tall; 1° per 72 pt.
	if math.Abs(w-24.0/72) > 1e-12 || math.Abs(h-12.0/72) > 1e-12 {
		t.Errorf("Measure = (%v, %v), want (%v, %v)", w, h, 24.0/72, 12.0/72)
	}

	w2, h2 := m.Measure("ab\nabcdefgh")
	if math.Abs(w2-2*w) > 1e-12 || math.Abs(h2-2*h) > 1e-12 {
		t.Errorf("multi-line Measure = (%v, %v)", w2, h2)
	}
}

func TestPageMeasurer_Errors(t *testing.T) {
	b := domain.Bounds{MinLon: 0, MaxLon: 1, MinLat: 0, MaxLat: 1}
	if _, err := declutter.NewPageMeasurer(b, "B5", "portrait", 10); err == nil {
		t.Error("expected error for unknown page")
	}
	if _, err := declutter.NewPageMeasurer(b, "A4", "sideways", 10); err == nil {
		t.Error("expected error for unknown orientation")
	}
	if _, err := declutter.NewPageMeasurer(b, "A4", "portrait", 0); err == nil {
		t.Error("expected error for zero font size")
	}
}
