package routing

// Itinerary is a found route expanded with catalog details.
type Itinerary struct {
	TotalDistance float64
	Path          []int64
	Ports         []Port
	Waypoints     []Coordinate
}

// Assemble attaches catalog details to every port of route, in path order.
// A path port without a catalog entry yields *PortNotFoundError.
func Assemble(catalog *Catalog, route Route) (Itinerary, error) {
	it := Itinerary{
		TotalDistance: route.Distance,
		Path:          append([]int64(nil), route.Ports...),
		Ports:         make([]Port, 0, len(route.Ports)),
		Waypoints:     append([]Coordinate{}, route.Waypoints...),
	}
	for _, id := range route.Ports {
		p, ok := catalog.Port(id)
		if !ok {
			return Itinerary{}, &PortNotFoundError{PortID: id}
		}
		it.Ports = append(it.Ports, p)
	}
	return it, nil
}
