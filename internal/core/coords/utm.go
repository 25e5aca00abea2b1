package coords

import (
	"fmt"
	"math"
	"strings"

	"github.com/im7mortal/UTM"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Projector converts a UTM position into geographic coordinates.
type Projector interface {
	ToLatLon(easting, northing float64, zone int, letter string) (lat, lon float64, err error)
}

// ProjectorFunc adapts a function to Projector.
type ProjectorFunc func(easting, northing float64, zone int, letter string) (float64, float64, error)

func (f ProjectorFunc) ToLatLon(easting, northing float64, zone int, letter string) (float64, float64, error) {
	return f(easting, northing, zone, letter)
}

// UTMProjector is the default Projector backed by github.com/im7mortal/UTM.
var UTMProjector Projector = ProjectorFunc(func(easting, northing float64, zone int, letter string) (float64, float64, error) {
	return UTM.ToLatLon(easting, northing, zone, letter)
})

// ParseUTMRow reads the first four cells of a row as easting, northing,
// zone number and zone letter and projects them. Any malformed part or
// projection error fails this row only.
func ParseUTMRow(row []domain.Cell, p Projector) (domain.GeoPoint, error) {
	if len(row) < 4 {
		return domain.GeoPoint{}, fmt.Errorf("utm: row has %d cells, need 4", len(row))
	}
	easting, ok := cellFloat(row[0])
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("utm: easting %q is not a number", row[0].String())
	}
	northing, ok := cellFloat(row[1])
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("utm: northing %q is not a number", row[1].String())
	}
	zf, ok := cellFloat(row[2])
	if !ok || zf != math.Trunc(zf) || zf < 1 || zf > 60 {
		return domain.GeoPoint{}, fmt.Errorf("utm: zone %q is not 1-60", row[2].String())
	}
	letter := strings.ToUpper(strings.TrimSpace(row[3].String()))
	if len(letter) != 1 || letter[0] < 'C' || letter[0] > 'X' || letter == "I" || letter == "O" {
		return domain.GeoPoint{}, fmt.Errorf("utm: zone letter %q is invalid", row[3].String())
	}

	lat, lon, err := p.ToLatLon(easting, northing, int(zf), letter)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("utm: %w", err)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return domain.GeoPoint{}, fmt.Errorf("utm: projection produced NaN")
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

func cellFloat(c domain.Cell) (float64, bool) {
	switch c.Kind {
	case domain.CellNumber:
		return c.Num, !math.IsNaN(c.Num) && !math.IsInf(c.Num, 0)
	case domain.CellText:
		return CoerceFloat(c.Text)
	}
	return 0, false
}
