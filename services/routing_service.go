package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"sea-route-server/logger"
	"sea-route-server/models"
	"sea-route-server/preprocessing"
	"sea-route-server/routing"
)

var (
	// ErrNotLoaded is returned before the first successful load.
	ErrNotLoaded = errors.New("services: route network not loaded")

	// ErrNoSuchPort is a catalog lookup miss for a caller-supplied id.
	ErrNoSuchPort = errors.New("services: no such port")
)

// reloadTimeout bounds a reload independently of the caller that started it.
const reloadTimeout = 2 * time.Minute

// Snapshot is one immutable generation of reference data. Searches read the
// snapshot that was current when they started; reloads replace it whole.
type Snapshot struct {
	Catalog  *routing.Catalog
	Network  *routing.Network
	Source   string
	LoadedAt time.Time
	Skipped  []error // route records excluded while building
}

// BuildSnapshot turns a dataset into a catalog and network. An empty network
// is treated as a load failure rather than served.
func BuildSnapshot(ds *preprocessing.Dataset, source string) (*Snapshot, error) {
	catalog, err := routing.NewCatalog(ds.Ports)
	if err != nil {
		return nil, &preprocessing.DataLoadError{Source: source, Err: err}
	}

	network, skipped := routing.BuildNetwork(ds.Routes)
	for _, e := range skipped {
		logger.Warn("Network", e.Error())
	}
	if network.PortCount() == 0 {
		return nil, &preprocessing.DataLoadError{Source: source, Err: errors.New("no valid route records")}
	}

	missing := 0
	for _, id := range network.PortIDs() {
		if _, ok := catalog.Port(id); !ok {
			missing++
		}
	}
	if missing > 0 {
		logger.Warnf("Network", "%d network ports have no catalog entry", missing)
	}

	return &Snapshot{
		Catalog:  catalog,
		Network:  network,
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Skipped:  skipped,
	}, nil
}

// RoutingService owns the current snapshot and answers route queries against it.
type RoutingService struct {
	source        preprocessing.Source
	searchTimeout time.Duration

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// NewRoutingService creates a service reading from source. A zero
// searchTimeout leaves searches bounded only by the caller's context.
func NewRoutingService(source preprocessing.Source, searchTimeout time.Duration) *RoutingService {
	return &RoutingService{
		source:        source,
		searchTimeout: searchTimeout,
	}
}

// Reload rebuilds the snapshot from the source and swaps it in. Concurrent
// calls share one build, which ignores ctx cancellation and is bounded by
// reloadTimeout instead. On failure the current snapshot stays in place.
func (rs *RoutingService) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := rs.group.Do("reload", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
		defer cancel()

		start := time.Now()
		ds, err := rs.source.LoadDataset(loadCtx)
		if err != nil {
			return nil, err
		}
		snap, err := BuildSnapshot(ds, rs.source.Describe())
		if err != nil {
			return nil, err
		}
		rs.current.Store(snap)
		logger.Success("Network", fmt.Sprintf("Loaded %d ports, %d segments from %s in %v",
			snap.Catalog.Len(), snap.Network.SegmentCount(), snap.Source, time.Since(start).Round(time.Millisecond)))
		return snap, nil
	})
	if err != nil {
		logger.Errorf("Network", "Reload from %s failed: %v", rs.source.Describe(), err)
		return nil, err
	}
	if shared {
		logger.Debug("Network", "Reload shared with a concurrent caller")
	}
	return v.(*Snapshot), nil
}

// Current returns the snapshot in use.
func (rs *RoutingService) Current() (*Snapshot, error) {
	snap := rs.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Plan finds the shortest route from start to end whose every leg is at most
// maxFuel and expands it with port details. found is false when no such route
// exists.
func (rs *RoutingService) Plan(ctx context.Context, start, end int64, maxFuel float64) (it routing.Itinerary, found bool, err error) {
	snap, err := rs.Current()
	if err != nil {
		return routing.Itinerary{}, false, err
	}

	if rs.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.searchTimeout)
		defer cancel()
	}

	began := time.Now()
	route, err := snap.Network.ShortestPath(ctx, start, end, maxFuel)
	if err != nil {
		return routing.Itinerary{}, false, err
	}
	if !route.Found {
		logger.Infof("Route", "No route %d -> %d with max fuel %g (%d ports settled)", start, end, maxFuel, route.Settled)
		return routing.Itinerary{}, false, nil
	}

	it, err = routing.Assemble(snap.Catalog, route)
	if err != nil {
		return routing.Itinerary{}, false, err
	}
	logger.Infof("Route", "%d -> %d: %d ports, %.1f km in %v", start, end, len(it.Path), it.TotalDistance, time.Since(began))
	return it, true, nil
}

// Ports lists the catalog ordered by id.
func (rs *RoutingService) Ports() ([]routing.Port, error) {
	snap, err := rs.Current()
	if err != nil {
		return nil, err
	}
	return snap.Catalog.Ports(), nil
}

// Port looks up one catalog entry.
func (rs *RoutingService) Port(id int64) (routing.Port, error) {
	snap, err := rs.Current()
	if err != nil {
		return routing.Port{}, err
	}
	p, ok := snap.Catalog.Port(id)
	if !ok {
		return routing.Port{}, fmt.Errorf("%w: %d", ErrNoSuchPort, id)
	}
	return p, nil
}

// PortDetail returns a port and the lanes leaving it.
func (rs *RoutingService) PortDetail(id int64) (models.PortDetail, error) {
	snap, err := rs.Current()
	if err != nil {
		return models.PortDetail{}, err
	}
	p, ok := snap.Catalog.Port(id)
	if !ok {
		return models.PortDetail{}, fmt.Errorf("%w: %d", ErrNoSuchPort, id)
	}
	return models.NewPortDetail(p, snap.Network.Segments(id)), nil
}

// Nearest returns the catalog port closest to coord.
func (rs *RoutingService) Nearest(coord routing.Coordinate) (routing.Port, float64, error) {
	snap, err := rs.Current()
	if err != nil {
		return routing.Port{}, 0, err
	}
	p, dist, ok := snap.Catalog.NearestPort(coord)
	if !ok {
		return routing.Port{}, 0, ErrNotLoaded
	}
	return p, dist, nil
}

// Stats summarizes the current snapshot.
func (rs *RoutingService) Stats() (models.NetworkStats, error) {
	snap, err := rs.Current()
	if err != nil {
		return models.NetworkStats{}, err
	}
	return snap.Stats(), nil
}

func (s *Snapshot) Stats() models.NetworkStats {
	return models.NetworkStats{
		Source:       s.Source,
		CatalogPorts: s.Catalog.Len(),
		NetworkPorts: s.Network.PortCount(),
		Segments:     s.Network.SegmentCount(),
		Skipped:      len(s.Skipped),
		LoadedAt:     s.LoadedAt,
	}
}
