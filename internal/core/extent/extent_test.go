package extent_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/domain"
	"github.com/rook-prog/CartoZen/internal/core/extent"
)

func assertSafe(t *testing.T, b domain.Bounds) {
	t.Helper()
	if !(b.MinLon < b.MaxLon) || !(b.MinLat < b.MaxLat) {
		t.Errorf("degenerate extent %+v", b)
	}
	for _, v := range []float64{b.MinLon, b.MaxLon} {
		if math.IsNaN(v) || v < -extent.SafeLon || v > extent.SafeLon {
			t.Errorf("longitude %v outside safe range in %+v", v, b)
		}
	}
	for _, v := range []float64{b.MinLat, b.MaxLat} {
		if math.IsNaN(v) || v < -extent.SafeLat || v > extent.SafeLat {
			t.Errorf("latitude %v outside safe range in %+v", v, b)
		}
	}
}

func TestClamp_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Bounds
		want domain.Bounds
	}{
		{
			name: "inside untouched",
			in:   domain.Bounds{MinLon: -10, MaxLon: 10, MinLat: -5, MaxLat: 5},
			want: domain.Bounds{MinLon: -10, MaxLon: 10, MinLat: -5, MaxLat: 5},
		},
		{
			name: "whole world",
			in:   domain.Bounds{MinLon: -180, MaxLon: 180, MinLat: -90, MaxLat: 90},
			want: domain.Bounds{MinLon: -179.999, MaxLon: 179.999, MinLat: -89.9, MaxLat: 89.9},
		},
		{
			name: "zero span",
			in:   domain.Bounds{MinLon: 20, MaxLon: 20, MinLat: 10, MaxLat: 10},
			want: domain.Bounds{MinLon: 20, MaxLon: 20.01, MinLat: 10, MaxLat: 10.01},
		},
		{
			name: "at the pole",
			in:   domain.Bounds{MinLon: 0, MaxLon: 1, MinLat: 90, MaxLat: 90},
			want: domain.Bounds{MinLon: 0, MaxLon: 1, MinLat: 89.89, MaxLat: 89.9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extent.Clamp(tt.in)
			if !boundsNear(got, tt.want) {
				t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			assertSafe(t, got)
		})
	}
}

func TestClamp_AlwaysSafe(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	specials := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, 90, -90, 180, -180, 1e9}
	pick := func() float64 {
		if r.Intn(4) == 0 {
			return specials[r.Intn(len(specials))]
		}
		return r.Float64()*800 - 400
	}
	for i := 0; i < 2000; i++ {
		assertSafe(t, extent.Clamp(domain.Bounds{MinLon: pick(), MaxLon: pick(), MinLat: pick(), MaxLat: pick()}))
	}
}

func TestAutoFit(t *testing.T) {
	points := []domain.GeoPoint{{Lat: 10, Lon: 20}, {Lat: 12, Lon: 30}}
	got, err := extent.AutoFit(points, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Longitude margin comes from the 10° lon span, latitude from the 2° lat span.
	want := domain.Bounds{MinLon: 19, MaxLon: 31, MinLat: 9.8, MaxLat: 12.2}
	if !boundsNear(got, want) {
		t.Errorf("AutoFit = %+v, want %+v", got, want)
	}
}

func TestAutoFit_SinglePoint(t *testing.T) {
	got, err := extent.AutoFit([]domain.GeoPoint{{Lat: 43.26, Lon: -2.93}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Bounds{MinLon: -2.94, MaxLon: -2.92, MinLat: 43.25, MaxLat: 43.27}
	if !boundsNear(got, want) {
		t.Errorf("AutoFit = %+v, want %+v", got, want)
	}
	assertSafe(t, got)
}

func TestAutoFit_PoleAndAntimeridian(t *testing.T) {
	got, err := extent.AutoFit([]domain.GeoPoint{{Lat: 90, Lon: 180}, {Lat: 90, Lon: 180}}, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSafe(t, got)
}

func TestAutoFit_Empty(t *testing.T) {
	if _, err := extent.AutoFit(nil, 5); !errors.Is(err, domain.ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}
}

func TestBuffered(t *testing.T) {
	got := extent.Buffered(domain.Bounds{MinLon: 68.4, MaxLon: 97.2, MinLat: 6.7, MaxLat: 35.5}, 2)
	want := domain.Bounds{MinLon: 66, MaxLon: 100, MinLat: 4, MaxLat: 38}
	if !boundsNear(got, want) {
		t.Errorf("Buffered = %+v, want %+v", got, want)
	}

	got = extent.Buffered(domain.Bounds{MinLon: -179.5, MaxLon: 179.5, MinLat: -89.5, MaxLat: 89.5}, 5)
	want = domain.Bounds{MinLon: -179.999, MaxLon: 179.999, MinLat: -89.9, MaxLat: 89.9}
	if !boundsNear(got, want) {
		t.Errorf("Buffered at limits = %+v, want %+v", got, want)
	}
}

func TestBufferedFromPoints(t *testing.T) {
	got, err := extent.BufferedFromPoints([]domain.GeoPoint{{Lat: 10.5, Lon: 20.5}, {Lat: 11.2, Lon: 21}}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Bounds{MinLon: 19, MaxLon: 22, MinLat: 9, MaxLat: 13}
	if !boundsNear(got, want) {
		t.Errorf("BufferedFromPoints = %+v, want %+v", got, want)
	}
}

func TestManual(t *testing.T) {
	got, err := extent.Manual("68°0'E", "97°30'E", "6°0'N", "37°6'N", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Bounds{MinLon: 68, MaxLon: 97.5, MinLat: 6, MaxLat: 37.1}
	if !boundsNear(got, want) {
		t.Errorf("Manual = %+v, want %+v", got, want)
	}

	got, err = extent.Manual("68 30 0 E", "70 0 0 E", "10 0 0 S", "5 0 0 S", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = domain.Bounds{MinLon: 67, MaxLon: 71, MinLat: -11, MaxLat: -4}
	if !boundsNear(got, want) {
		t.Errorf("buffered Manual = %+v, want %+v", got, want)
	}
}

func TestManual_BadCorner(t *testing.T) {
	_, err := extent.Manual("68°0'E", "97.5", "6°0'N", "37°6'N", 0)
	var ce *domain.CornerError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CornerError, got %v", err)
	}
	if ce.Corner != "right" || ce.Value != "97.5" {
		t.Errorf("got %+v", ce)
	}
}

func TestClusterInsets(t *testing.T) {
	points := []domain.GeoPoint{
		{Lat: 0, Lon: 0}, {Lat: 0.1, Lon: 0.1}, // cluster 0, size 2
		{Lat: 10, Lon: 10},                                             // cluster 1, singleton
		{Lat: 20, Lon: 20}, {Lat: 20.1, Lon: 20}, {Lat: 20, Lon: 20.2}, // cluster 2, size 3
		{Lat: 30, Lon: 30}, {Lat: 30, Lon: 30.1}, // cluster 3, size 2
	}
	clusters := []domain.Cluster{
		{ID: 0, Members: []int{0, 1}},
		{ID: 1, Members: []int{2}},
		{ID: 2, Members: []int{3, 4, 5}},
		{ID: 3, Members: []int{6, 7}},
	}

	insets := extent.ClusterInsets(points, clusters, 2, 0.2)
	if len(insets) != 2 {
		t.Fatalf("expected 2 insets, got %d", len(insets))
	}
	if insets[0].ClusterID != 2 || insets[0].Size != 3 {
		t.Errorf("first inset = %+v, want cluster 2", insets[0])
	}
	if insets[1].ClusterID != 0 {
		t.Errorf("second inset = %+v, want cluster 0 (tie broken by id)", insets[1])
	}
	want := domain.Bounds{MinLon: 19.8, MaxLon: 20.4, MinLat: 19.8, MaxLat: 20.3}
	if !boundsNear(insets[0].Bounds, want) {
		t.Errorf("inset bounds = %+v, want %+v", insets[0].Bounds, want)
	}

	if got := extent.ClusterInsets(points, clusters, 0, 0.2); len(got) != 0 {
		t.Errorf("maxInsets 0 returned %d insets", len(got))
	}
	if got := extent.ClusterInsets(points, clusters[1:2], 2, 0.2); len(got) != 0 {
		t.Errorf("singletons returned %d insets", len(got))
	}
}

func boundsNear(a, b domain.Bounds) bool {
	const tol = 1e-9
	return math.Abs(a.MinLon-b.MinLon) < tol && math.Abs(a.MaxLon-b.MaxLon) < tol &&
		math.Abs(a.MinLat-b.MinLat) < tol && math.Abs(a.MaxLat-b.MaxLat) < tol
}
