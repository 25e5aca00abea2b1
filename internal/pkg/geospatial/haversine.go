package geospatial

import "math"

// EarthRadiusKm is the IUGG mean Earth radius.
const EarthRadiusKm = 6371.0088

// kmPerDegLat is the length of one degree of latitude on the mean sphere.
const kmPerDegLat = EarthRadiusKm * math.Pi / 180

// HaversineKm calculates the great-circle distance in kilometers between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	a = math.Min(1, a)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BoundingBox returns a box that contains every point within radiusKm of
// (lat, lon). The box is conservative: the longitude half-width is taken at
// the box's poleward edge. ok is false when no such box exists in plain
// degree space, i.e. the box would reach a pole or cross the antimeridian.
func BoundingBox(lat, lon, radiusKm float64) (minLat, minLon, maxLat, maxLon float64, ok bool) {
	latDelta := radiusKm / kmPerDegLat
	edge := math.Abs(lat) + latDelta
	if edge >= 89 {
		return 0, 0, 0, 0, false
	}
	lonDelta := latDelta / math.Cos(toRad(edge))
	minLon, maxLon = lon-lonDelta, lon+lonDelta
	if minLon < -180 || maxLon > 180 {
		return 0, 0, 0, 0, false
	}
	return lat - latDelta, minLon, lat + latDelta, maxLon, true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
