package routing

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"sea-route-server/logger"
)

// ctxCheckInterval is how many frontier pops happen between context checks.
const ctxCheckInterval = 64

// Route is the outcome of a constrained search. Found is false when no
// admissible route exists; that is a normal result, not an error.
type Route struct {
	Found     bool
	Distance  float64
	Ports     []int64
	Waypoints []Coordinate
	Settled   int // ports finalized during the search
}

// hop links a frontier entry to the entry it was expanded from.
type hop struct {
	prev *hop
	port int64
	seg  *Segment // segment taken to reach port; nil for the start
}

type frontierItem struct {
	dist float64
	seq  uint64
	via  *hop
}

// frontier orders partial paths by distance, then port ID, then insertion order.
// The path payload never takes part in the comparison.
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	if f[i].via.port != f[j].via.port {
		return f[i].via.port < f[j].via.port
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) { *f = append(*f, x.(frontierItem)) }

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = frontierItem{}
	*f = old[:n-1]
	return item
}

// ShortestPath finds the minimum-distance route from start to end using only
// segments whose individual distance is at most maxFuel.
//
// Both ports must be in the network, otherwise an *UnknownPortError is returned
// before any traversal. When the frontier runs out without reaching end the
// returned Route has Found == false and the error is nil. The context is
// checked between frontier pops; its error is returned if it is done.
func (n *Network) ShortestPath(ctx context.Context, start, end int64, maxFuel float64) (Route, error) {
	if !n.HasPort(start) {
		return Route{}, &UnknownPortError{PortID: start, Role: "start"}
	}
	if !n.HasPort(end) {
		return Route{}, &UnknownPortError{PortID: end, Role: "end"}
	}
	if math.IsNaN(maxFuel) || maxFuel < 0 {
		return Route{}, fmt.Errorf("%w: %g", ErrInvalidFuel, maxFuel)
	}

	logger.Debugf("Search", "Finding route from port %d to %d with max fuel %g", start, end, maxFuel)

	if start == end {
		return Route{Found: true, Ports: []int64{start}, Waypoints: []Coordinate{}, Settled: 1}, nil
	}

	visited := make(map[int64]bool)
	pq := &frontier{{dist: 0, via: &hop{port: start}}}
	heap.Init(pq)

	var seq uint64
	pops := 0

	for pq.Len() > 0 {
		if pops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Route{}, fmt.Errorf("routing: search aborted after %d pops: %w", pops, err)
			}
		}
		pops++

		item := heap.Pop(pq).(frontierItem)
		current := item.via.port

		if current == end {
			route := item.route()
			route.Settled = len(visited)
			logger.Debugf("Search", "Found route %v, total distance %g", route.Ports, route.Distance)
			return route, nil
		}

		if visited[current] {
			continue
		}
		visited[current] = true
		logger.Debugf("Search", "Visiting port %d, total distance so far: %g", current, item.dist)

		for _, seg := range n.edges[current] {
			if seg.Distance > maxFuel {
				logger.Debugf("Search", "Skipping %d -> %d (distance %g exceeds fuel capacity)", current, seg.ToID, seg.Distance)
				continue
			}
			if visited[seg.ToID] {
				continue
			}
			seq++
			heap.Push(pq, frontierItem{
				dist: item.dist + seg.Distance,
				seq:  seq,
				via:  &hop{prev: item.via, port: seg.ToID, seg: seg},
			})
		}
	}

	logger.Debugf("Search", "No route from %d to %d under fuel capacity %g (%d ports settled)", start, end, maxFuel, len(visited))
	return Route{Found: false, Settled: len(visited)}, nil
}

// route unwinds the hop chain into port order and concatenated geometry.
func (it frontierItem) route() Route {
	var chain []*hop
	for h := it.via; h != nil; h = h.prev {
		chain = append(chain, h)
	}

	r := Route{
		Found:     true,
		Distance:  it.dist,
		Ports:     make([]int64, 0, len(chain)),
		Waypoints: []Coordinate{},
	}
	for i := len(chain) - 1; i >= 0; i-- {
		h := chain[i]
		r.Ports = append(r.Ports, h.port)
		if h.seg != nil {
			r.Waypoints = append(r.Waypoints, h.seg.Waypoints...)
		}
	}
	return r
}
