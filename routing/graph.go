package routing

import (
	"fmt"
	"sort"
)

// Coordinate is a geographic point in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Port represents a vertex in the shipping network
type Port struct {
	ID       int64      // Unique identifier for the port
	Name     string     // Display name
	Location Coordinate // Geographic position of the port
}

// Segment represents one direction of a shipping lane between two ports
type Segment struct {
	FromID    int64        // ID of the departure port
	ToID      int64        // ID of the arrival port
	Distance  float64      // Distance in kilometres
	Waypoints []Coordinate // Intermediate points ordered from FromID to ToID
}

// Network is an undirected weighted graph of ports connected by lanes.
// It is immutable once built and can be shared between concurrent searches.
type Network struct {
	edges     map[int64][]*Segment      // Map of port IDs to outgoing segments
	waypoints map[portPair][]Coordinate // Geometry per ordered port pair
	segments  int
}

type portPair struct {
	from, to int64
}

// HasPort reports whether id has at least one lane in the network.
func (n *Network) HasPort(id int64) bool {
	_, ok := n.edges[id]
	return ok
}

// Segments returns the outgoing segments of a port. The slice must not be modified.
func (n *Network) Segments(id int64) []*Segment {
	return n.edges[id]
}

// Waypoints returns the lane geometry stored for the ordered pair (from, to).
// When several lanes join the same pair, the geometry of the shortest one is kept.
func (n *Network) Waypoints(from, to int64) ([]Coordinate, bool) {
	wp, ok := n.waypoints[portPair{from, to}]
	return wp, ok
}

// PortIDs returns every port that appears in the network, sorted.
func (n *Network) PortIDs() []int64 {
	ids := make([]int64, 0, len(n.edges))
	for id := range n.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PortCount returns the number of ports with at least one lane.
func (n *Network) PortCount() int { return len(n.edges) }

// SegmentCount returns the number of directed segments (twice the number of lanes).
func (n *Network) SegmentCount() int { return n.segments }

// Catalog indexes ports by ID.
type Catalog struct {
	byID  map[int64]Port
	order []int64
}

// NewCatalog builds a catalog from ports. IDs must be unique.
func NewCatalog(ports []Port) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[int64]Port, len(ports)),
		order: make([]int64, 0, len(ports)),
	}
	for _, p := range ports {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePort, p.ID)
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c, nil
}

// Port looks a port up by ID.
func (c *Catalog) Port(id int64) (Port, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Ports returns all ports sorted by ID.
func (c *Catalog) Ports() []Port {
	out := make([]Port, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of ports in the catalog.
func (c *Catalog) Len() int { return len(c.byID) }
