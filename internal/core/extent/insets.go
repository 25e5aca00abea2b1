package extent

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Inset defaults.
const (
	DefaultMaxInsets = 2
	DefaultInsetPad  = 0.2
)

// ClusterInsets returns zoom windows for the largest multi-member clusters,
// biggest first (ties by cluster id), at most maxInsets of them. Each window
// is the members' bounding box padded by padDeg and clamped.
func ClusterInsets(points []domain.GeoPoint, clusters []domain.Cluster, maxInsets int, padDeg float64) []domain.Inset {
	if maxInsets <= 0 {
		return nil
	}
	big := make([]domain.Cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.Size() > 1 {
			big = append(big, c)
		}
	}
	sort.SliceStable(big, func(i, j int) bool {
		if big[i].Size() != big[j].Size() {
			return big[i].Size() > big[j].Size()
		}
		return big[i].ID < big[j].ID
	})
	if len(big) > maxInsets {
		big = big[:maxInsets]
	}

	out := make([]domain.Inset, 0, len(big))
	for _, c := range big {
		b := orb.Bound{Min: points[c.Members[0]].Orb(), Max: points[c.Members[0]].Orb()}
		for _, m := range c.Members[1:] {
			b = b.Extend(points[m].Orb())
		}
		if padDeg > 0 {
			b = b.Pad(padDeg)
		}
		out = append(out, domain.Inset{
			ClusterID: c.ID,
			Size:      c.Size(),
			Bounds:    Clamp(domain.BoundsFromOrb(b)),
		})
	}
	return out
}
