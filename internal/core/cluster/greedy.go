// Package cluster groups nearby stations with a seed-relative greedy sweep.
//
// The lowest unassigned index seeds each cluster and every other unassigned
// point within the threshold of that seed joins it. Membership is not
// transitive: a point close to a member but far from the seed starts or
// joins a later cluster. Results are deterministic for a given input.
package cluster

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/rook-prog/CartoZen/internal/core/domain"
	"github.com/rook-prog/CartoZen/internal/pkg/geospatial"
)

// indexMinPoints is the input size from which the R-tree candidate index is built.
const indexMinPoints = 128

// Result holds the cluster partition and the per-cluster representative table.
type Result struct {
	Clusters        []domain.Cluster        `json:"clusters"`
	Representatives []domain.Representative `json:"representatives"`
}

// Greedy partitions points into clusters whose members lie within
// thresholdKm (great-circle distance) of the cluster seed. Member lists hold
// positions in points, ascending. A threshold of zero or less yields one
// singleton cluster per point. The input slice is not modified.
func Greedy(points []domain.GeoPoint, thresholdKm float64) Result {
	return greedy(points, thresholdKm, len(points) >= indexMinPoints)
}

func greedy(points []domain.GeoPoint, thresholdKm float64, useIndex bool) Result {
	var idx *index
	if useIndex && thresholdKm > 0 {
		idx = newIndex(points)
	}

	assigned := make([]bool, len(points))
	res := Result{
		Clusters:        []domain.Cluster{},
		Representatives: []domain.Representative{},
	}
	for seed := range points {
		if assigned[seed] {
			continue
		}
		assigned[seed] = true
		members := []int{seed}

		if thresholdKm > 0 {
			s := points[seed]
			for _, j := range candidates(idx, points, s, thresholdKm, seed) {
				if assigned[j] {
					continue
				}
				p := points[j]
				if geospatial.HaversineKm(s.Lat, s.Lon, p.Lat, p.Lon) <= thresholdKm {
					assigned[j] = true
					members = append(members, j)
				}
			}
		}

		c := domain.Cluster{
			ID:       len(res.Clusters),
			Members:  members,
			Centroid: centroid(points, members),
		}
		res.Clusters = append(res.Clusters, c)
		res.Representatives = append(res.Representatives, domain.Representative{
			ClusterID: c.ID,
			Size:      c.Size(),
			Lat:       c.Centroid.Lat,
			Lon:       c.Centroid.Lon,
		})
	}
	return res
}

// candidates returns the ascending positions after seed that may lie within
// km of s. Without an index, or where no degree box bounds the circle, every
// later position is a candidate.
func candidates(idx *index, points []domain.GeoPoint, s domain.GeoPoint, km float64, seed int) []int {
	if idx != nil {
		if near, ok := idx.near(s, km); ok {
			out := near[:0]
			for _, j := range near {
				if j > seed {
					out = append(out, j)
				}
			}
			sort.Ints(out)
			return out
		}
	}
	out := make([]int, 0, len(points)-seed-1)
	for j := seed + 1; j < len(points); j++ {
		out = append(out, j)
	}
	return out
}

// centroid is the plain mean of member latitudes and longitudes.
func centroid(points []domain.GeoPoint, members []int) domain.GeoPoint {
	var lat, lon float64
	for _, m := range members {
		lat += points[m].Lat
		lon += points[m].Lon
	}
	n := float64(len(members))
	return domain.GeoPoint{Lat: lat / n, Lon: lon / n}
}

// index is an R-tree over point positions, used only to narrow candidates.
type index struct {
	tree *rtreego.Rtree
}

type entry struct {
	rect rtreego.Rect
	pos  int
}

func (e entry) Bounds() rtreego.Rect { return e.rect }

// pointTol gives indexed points a tiny non-zero extent.
const pointTol = 1e-9

func newIndex(points []domain.GeoPoint) *index {
	tree := rtreego.NewTree(2, 25, 50)
	for i, p := range points {
		tree.Insert(entry{rect: rtreego.Point{p.Lon, p.Lat}.ToRect(pointTol), pos: i})
	}
	return &index{tree: tree}
}

// near returns positions whose point falls in a box enclosing the km circle
// around s. ok is false when no such box exists.
func (ix *index) near(s domain.GeoPoint, km float64) ([]int, bool) {
	// Widen slightly so points exactly on the threshold stay inside the box.
	minLat, minLon, maxLat, maxLon, ok := geospatial.BoundingBox(s.Lat, s.Lon, km*1.001+1e-6)
	if !ok {
		return nil, false
	}
	rect, err := rtreego.NewRect(rtreego.Point{minLon, minLat}, []float64{maxLon - minLon, maxLat - minLat})
	if err != nil {
		return nil, false
	}
	hits := ix.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(entry).pos)
	}
	return out, true
}
