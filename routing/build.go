package routing

import (
	"fmt"
	"math"
)

// RouteRecord is one undirected lane as it comes out of reference data.
// Pointer fields are nil when the source omitted them. Invalid is set by
// decoders that could not read a field; such records are always rejected.
type RouteRecord struct {
	From      *int64
	To        *int64
	Distance  *float64
	Waypoints []Coordinate
	Invalid   string
}

// BuildNetwork materializes every valid record as two mirrored segments.
// Records with a missing endpoint, a missing distance or a negative distance are
// skipped and reported as *MalformedRouteError values; the rest of the input is
// still used.
func BuildNetwork(records []RouteRecord) (*Network, []error) {
	n := &Network{
		edges:     make(map[int64][]*Segment),
		waypoints: make(map[portPair][]Coordinate),
	}
	var rejected []error

	for i, rec := range records {
		if err := validateRecord(i, rec); err != nil {
			rejected = append(rejected, err)
			continue
		}
		from, to, dist := *rec.From, *rec.To, *rec.Distance

		forward := make([]Coordinate, len(rec.Waypoints))
		copy(forward, rec.Waypoints)
		backward := reversed(forward)

		n.addSegment(&Segment{FromID: from, ToID: to, Distance: dist, Waypoints: forward})
		n.addSegment(&Segment{FromID: to, ToID: from, Distance: dist, Waypoints: backward})
	}

	return n, rejected
}

func (n *Network) addSegment(s *Segment) {
	n.edges[s.FromID] = append(n.edges[s.FromID], s)
	n.segments++

	key := portPair{s.FromID, s.ToID}
	if _, exists := n.waypoints[key]; !exists || s.Distance < n.shortestBetween(s.FromID, s.ToID, s) {
		n.waypoints[key] = s.Waypoints
	}
}

// shortestBetween returns the smallest distance among existing segments from->to,
// ignoring except.
func (n *Network) shortestBetween(from, to int64, except *Segment) float64 {
	best := math.Inf(1)
	for _, s := range n.edges[from] {
		if s != except && s.ToID == to && s.Distance < best {
			best = s.Distance
		}
	}
	return best
}

func validateRecord(i int, rec RouteRecord) error {
	switch {
	case rec.Invalid != "":
		return &MalformedRouteError{Index: i, Reason: rec.Invalid}
	case rec.From == nil:
		return &MalformedRouteError{Index: i, Reason: "missing from"}
	case rec.To == nil:
		return &MalformedRouteError{Index: i, Reason: "missing to"}
	case rec.Distance == nil:
		return &MalformedRouteError{Index: i, Reason: "missing distance"}
	case math.IsNaN(*rec.Distance) || math.IsInf(*rec.Distance, 0):
		return &MalformedRouteError{Index: i, Reason: "distance is not a finite number"}
	case *rec.Distance < 0:
		return &MalformedRouteError{Index: i, Reason: fmt.Sprintf("negative distance %g", *rec.Distance)}
	}
	return nil
}

func reversed(in []Coordinate) []Coordinate {
	out := make([]Coordinate, len(in))
	for i, c := range in {
		out[len(in)-1-i] = c
	}
	return out
}
