package routing

import "math"

const EARTH_RADIUS_KM = 6371.0

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineKm returns the great-circle distance between two coordinates in kilometres.
func HaversineKm(coord1, coord2 Coordinate) float64 {
	phi1 := toRadians(coord1.Lat)
	phi2 := toRadians(coord2.Lat)
	deltaPhi := toRadians(coord2.Lat - coord1.Lat)
	deltaLambda := toRadians(coord2.Lon - coord1.Lon)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EARTH_RADIUS_KM * c
}

// NearestPort returns the catalog port closest to coord and its distance in km.
// ok is false when the catalog is empty. Ties go to the lower port ID.
func (c *Catalog) NearestPort(coord Coordinate) (nearest Port, distanceKm float64, ok bool) {
	distanceKm = math.Inf(1)

	for _, id := range c.order {
		p := c.byID[id]
		dist := HaversineKm(coord, p.Location)
		if dist < distanceKm {
			distanceKm = dist
			nearest = p
			ok = true
		}
	}

	return nearest, distanceKm, ok
}

// ValidCoordinate reports whether lat/lon are finite and within range.
func ValidCoordinate(c Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
