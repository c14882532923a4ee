// Package export renders itineraries for map clients.
package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"sea-route-server/routing"
)

// Port marker roles.
const (
	RoleStart = "start"
	RoleVia   = "via"
	RoleEnd   = "end"
)

// ItineraryFeatureCollection returns the route polyline as a LineString
// feature followed by one Point feature per port in path order.
//
// The line starts at the first port, runs through the lane waypoints and
// ends at the last port. A single-port itinerary has no line.
func ItineraryFeatureCollection(it routing.Itinerary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(it.Ports) > 1 {
		line := make(orb.LineString, 0, len(it.Waypoints)+2)
		line = append(line, point(it.Ports[0].Location))
		for _, c := range it.Waypoints {
			line = append(line, point(c))
		}
		line = append(line, point(it.Ports[len(it.Ports)-1].Location))

		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["total_distance"] = it.TotalDistance
		f.Properties["path"] = append([]int64{}, it.Path...)
		fc.Append(f)
	}

	for i, p := range it.Ports {
		f := geojson.NewFeature(point(p.Location))
		f.Properties["kind"] = "port"
		f.Properties["id"] = p.ID
		f.Properties["name"] = p.Name
		f.Properties["role"] = role(i, len(it.Ports))
		fc.Append(f)
	}
	return fc
}

func role(i, n int) string {
	switch {
	case i == 0:
		return RoleStart
	case i == n-1:
		return RoleEnd
	default:
		return RoleVia
	}
}

func point(c routing.Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}
