package models

import (
	"time"

	"sea-route-server/routing"
)

// NoRouteMessage is returned when every path needs a leg longer than the fuel capacity.
const NoRouteMessage = "No valid route found with given fuel constraint"

// PortView is a port as the web client sees it. Coordinates are [lon, lat],
// the GeoJSON order of the port data.
type PortView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewPortView(p routing.Port) PortView {
	return PortView{ID: p.ID, Name: p.Name, Coordinates: [2]float64{p.Location.Lon, p.Location.Lat}}
}

// Waypoint keeps the "Longtitude" key the route data and the client use.
type Waypoint struct {
	Latitude   float64 `json:"latitude"`
	Longtitude float64 `json:"Longtitude"`
}

type RouteResponse struct {
	Success          bool       `json:"success"`
	TotalDistance    float64    `json:"total_distance"`
	Path             []int64    `json:"path"`
	Ports            []PortView `json:"ports"`
	RouteCoordinates []Waypoint `json:"route_coordinates"`
}

// NewRouteResponse converts an assembled itinerary into the success envelope.
func NewRouteResponse(it routing.Itinerary) RouteResponse {
	resp := RouteResponse{
		Success:          true,
		TotalDistance:    it.TotalDistance,
		Path:             append([]int64{}, it.Path...),
		Ports:            make([]PortView, 0, len(it.Ports)),
		RouteCoordinates: make([]Waypoint, 0, len(it.Waypoints)),
	}
	for _, p := range it.Ports {
		resp.Ports = append(resp.Ports, NewPortView(p))
	}
	for _, c := range it.Waypoints {
		resp.RouteCoordinates = append(resp.RouteCoordinates, Waypoint{Latitude: c.Lat, Longtitude: c.Lon})
	}
	return resp
}

type NoRouteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewNoRouteResponse() NoRouteResponse {
	return NoRouteResponse{Success: false, Message: NoRouteMessage}
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status   string    `json:"status"`
	Ports    int       `json:"ports"`
	Segments int       `json:"segments"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NetworkStats describes the loaded reference data.
type NetworkStats struct {
	Source       string    `json:"source"`
	CatalogPorts int       `json:"catalog_ports"`
	NetworkPorts int       `json:"network_ports"`
	Segments     int       `json:"segments"`
	Skipped      int       `json:"skipped_records"`
	LoadedAt     time.Time `json:"loaded_at"`
}

type NearestPortResponse struct {
	Port       PortView `json:"port"`
	DistanceKm float64  `json:"distance_km"`
}

type SegmentView struct {
	To        int64   `json:"to"`
	Distance  float64 `json:"distance"`
	Waypoints int     `json:"waypoints"`
}

// PortDetail is a port with the lanes leaving it.
type PortDetail struct {
	PortView
	Segments []SegmentView `json:"segments"`
}

func NewPortDetail(p routing.Port, segs []*routing.Segment) PortDetail {
	d := PortDetail{PortView: NewPortView(p), Segments: make([]SegmentView, 0, len(segs))}
	for _, s := range segs {
		d.Segments = append(d.Segments, SegmentView{To: s.ToID, Distance: s.Distance, Waypoints: len(s.Waypoints)})
	}
	return d
}
