package coords

import (
	"strings"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Recognised column names, matched case-insensitively.
var (
	LatAliases = []string{"lat", "latitude", "lat_dd", "y", "ycoord", "y_coord"}
	LonAliases = []string{"lon", "long", "longitude", "lon_dd", "x", "xcoord", "x_coord"}
)

// ResolveColumns finds the latitude and longitude column positions.
// An explicit name wins over the alias lists; both are matched ignoring case
// and surrounding whitespace.
func ResolveColumns(columns []string, latName, lonName string) (lat, lon int, err error) {
	lat, err = resolveAxis(columns, domain.AxisLat, latName, LatAliases)
	if err != nil {
		return -1, -1, err
	}
	lon, err = resolveAxis(columns, domain.AxisLon, lonName, LonAliases)
	if err != nil {
		return -1, -1, err
	}
	return lat, lon, nil
}

func resolveAxis(columns []string, axis domain.Axis, explicit string, aliases []string) (int, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if i := indexFold(columns, explicit); i >= 0 {
			return i, nil
		}
		return -1, &domain.ColumnError{Axis: axis, Requested: explicit, Columns: columns}
	}
	// Alias order decides ties, so "lat" beats a stray "y" column.
	for _, a := range aliases {
		if i := indexFold(columns, a); i >= 0 {
			return i, nil
		}
	}
	return -1, &domain.ColumnError{Axis: axis, Columns: columns}
}

func indexFold(columns []string, name string) int {
	for i, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}
