package cluster

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

func TestGreedy_Example(t *testing.T) {
	points := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}, {Lat: 5, Lon: 5}}
	res := Greedy(points, 5)

	if len(res.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(res.Clusters))
	}
	if !reflect.DeepEqual(res.Clusters[0].Members, []int{0, 1}) {
		t.Errorf("cluster 0 members = %v, want [0 1]", res.Clusters[0].Members)
	}
	if !reflect.DeepEqual(res.Clusters[1].Members, []int{2}) {
		t.Errorf("cluster 1 members = %v, want [2]", res.Clusters[1].Members)
	}
	c := res.Representatives[0]
	if c.ClusterID != 0 || c.Size != 2 || math.Abs(c.Lat) > 1e-12 || math.Abs(c.Lon-0.0005) > 1e-12 {
		t.Errorf("representative 0 = %+v, want centroid (0, 0.0005) size 2", c)
	}
}

func TestGreedy_ZeroThresholdGivesSingletons(t *testing.T) {
	points := []domain.GeoPoint{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	for _, km := range []float64{0, -3} {
		res := Greedy(points, km)
		if len(res.Clusters) != len(points) {
			t.Fatalf("threshold %v: expected %d clusters, got %d", km, len(points), len(res.Clusters))
		}
		for i, c := range res.Clusters {
			if c.Size() != 1 || c.Members[0] != i {
				t.Errorf("threshold %v: cluster %d = %v", km, i, c.Members)
			}
		}
	}
}

func TestGreedy_SeedRelativeMembership(t *testing.T) {
	// Each neighbour is ~0.9 km from the previous one, so point 2 is within
	// reach of point 1 but not of seed 0.
	points := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.008}, {Lat: 0, Lon: 0.016}}
	res := Greedy(points, 1)
	want := [][]int{{0, 1}, {2}}
	if got := members(res); !reflect.DeepEqual(got, want) {
		t.Errorf("members = %v, want %v", got, want)
	}
}

func TestGreedy_Empty(t *testing.T) {
	res := Greedy(nil, 5)
	if len(res.Clusters) != 0 || len(res.Representatives) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestGreedy_DeterministicPartition(t *testing.T) {
	points := randomPoints(400, 42)
	first := Greedy(points, 25)
	second := Greedy(points, 25)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("clustering is not deterministic")
	}

	seen := make([]int, len(points))
	for _, c := range first.Clusters {
		for _, m := range c.Members {
			seen[m]++
		}
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("point %d appears in %d clusters", i, n)
		}
	}
}

func TestGreedy_IndexMatchesFullScan(t *testing.T) {
	points := randomPoints(300, 7)
	// Add points near the pole and the antimeridian, where the index falls back.
	points = append(points,
		domain.GeoPoint{Lat: 89.5, Lon: 10}, domain.GeoPoint{Lat: 89.6, Lon: -170},
		domain.GeoPoint{Lat: 10, Lon: 179.99}, domain.GeoPoint{Lat: 10, Lon: -179.99},
	)
	for _, km := range []float64{1, 50, 400} {
		scan := greedy(points, km, false)
		indexed := greedy(points, km, true)
		if !reflect.DeepEqual(scan, indexed) {
			t.Errorf("threshold %v km: indexed result differs from full scan", km)
		}
	}
}

func TestGreedy_DoesNotModifyInput(t *testing.T) {
	points := randomPoints(50, 3)
	before := append([]domain.GeoPoint(nil), points...)
	Greedy(points, 100)
	if !reflect.DeepEqual(points, before) {
		t.Error("input points were modified")
	}
}

func members(res Result) [][]int {
	out := make([][]int, len(res.Clusters))
	for i, c := range res.Clusters {
		out[i] = c.Members
	}
	return out
}

// randomPoints scatters points around a few hubs so clusters form.
func randomPoints(n int, seed int64) []domain.GeoPoint {
	r := rand.New(rand.NewSource(seed))
	hubs := []domain.GeoPoint{{Lat: 43.26, Lon: -2.93}, {Lat: 19.07, Lon: 72.87}, {Lat: -33.87, Lon: 151.21}, {Lat: 70, Lon: 25}}
	out := make([]domain.GeoPoint, n)
	for i := range out {
		h := hubs[r.Intn(len(hubs))]
		out[i] = domain.GeoPoint{Lat: h.Lat + r.Float64()*2 - 1, Lon: h.Lon + r.Float64()*2 - 1}
	}
	return out
}
