package extent

import (
	"github.com/rook-prog/CartoZen/internal/core/coords"
	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Manual builds an extent from four DMS corner strings such as "68°0'E".
// A positive bufferDeg routes the box through Buffered.
func Manual(left, right, bottom, top string, bufferDeg float64) (domain.Bounds, error) {
	corners := [4]struct{ name, value string }{
		{"left", left}, {"right", right}, {"bottom", bottom}, {"top", top},
	}
	var v [4]float64
	for i, c := range corners {
		d, ok := coords.ParseDMS(c.value)
		if !ok {
			return domain.Bounds{}, &domain.CornerError{Corner: c.name, Value: c.value}
		}
		v[i] = d
	}

	b := domain.Bounds{MinLon: v[0], MaxLon: v[1], MinLat: v[2], MaxLat: v[3]}
	if bufferDeg > 0 {
		return Buffered(b, bufferDeg), nil
	}
	return Clamp(b), nil
}
