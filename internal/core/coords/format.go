package coords

import (
	"fmt"
	"math"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

func hemisphere(v float64, axis domain.Axis) string {
	switch {
	case axis == domain.AxisLon && v >= 0:
		return "E"
	case axis == domain.AxisLon:
		return "W"
	case v >= 0:
		return "N"
	default:
		return "S"
	}
}

// FormatDD renders decimal degrees with two decimals and a hemisphere letter, e.g. 12.35°N.
func FormatDD(v float64, axis domain.Axis) string {
	return fmt.Sprintf("%.2f°%s", math.Abs(v), hemisphere(v, axis))
}

// FormatDMS renders truncated degrees, minutes and seconds, e.g. 12°21'0"N.
func FormatDMS(v float64, axis domain.Axis) string {
	av := math.Abs(v)
	d := math.Floor(av)
	minutes := (av - d) * 60
	m := math.Floor(minutes)
	s := math.Floor((minutes - m) * 60)
	return fmt.Sprintf("%d°%d'%d\"%s", int(d), int(m), int(s), hemisphere(v, axis))
}
