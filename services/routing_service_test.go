package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sea-route-server/preprocessing"
	"sea-route-server/routing"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

// memSource serves a fixed dataset and counts loads. When gate is set each
// load waits for it to close.
type memSource struct {
	ds    *preprocessing.Dataset
	err   error
	gate  chan struct{}
	loads atomic.Int32
}

func (s *memSource) Describe() string { return "memory" }

func (s *memSource) LoadDataset(ctx context.Context) (*preprocessing.Dataset, error) {
	s.loads.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.ds, nil
}

func triangleDataset() *preprocessing.Dataset {
	return &preprocessing.Dataset{
		Ports: []routing.Port{
			{ID: 1, Name: "Singapore", Location: routing.Coordinate{Lat: 1.26, Lon: 103.84}},
			{ID: 2, Name: "Colombo", Location: routing.Coordinate{Lat: 6.95, Lon: 79.84}},
			{ID: 3, Name: "Jebel Ali", Location: routing.Coordinate{Lat: 25.01, Lon: 55.06}},
		},
		Routes: []routing.RouteRecord{
			{From: i64(1), To: i64(2), Distance: f64(5), Waypoints: []routing.Coordinate{{Lat: 1, Lon: 1}}},
			{From: i64(2), To: i64(3), Distance: f64(4), Waypoints: []routing.Coordinate{{Lat: 2, Lon: 2}}},
			{From: i64(1), To: i64(3), Distance: f64(20), Waypoints: []routing.Coordinate{{Lat: 3, Lon: 3}}},
			{From: i64(3), Distance: f64(1)},
		},
	}
}

func loaded(t *testing.T) *RoutingService {
	t.Helper()
	rs := NewRoutingService(&memSource{ds: triangleDataset()}, time.Second)
	_, err := rs.Reload(context.Background())
	require.NoError(t, err)
	return rs
}

func TestRoutingServiceBeforeLoad(t *testing.T) {
	rs := NewRoutingService(&memSource{ds: triangleDataset()}, 0)

	_, _, err := rs.Plan(context.Background(), 1, 3, 10)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = rs.Ports()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = rs.Stats()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRoutingServicePlan(t *testing.T) {
	rs := loaded(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		it, found, err := rs.Plan(ctx, 1, 3, 10)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []int64{1, 2, 3}, it.Path)
		assert.Equal(t, 9.0, it.TotalDistance)
		assert.Equal(t, "Jebel Ali", it.Ports[2].Name)
		assert.Equal(t, []routing.Coordinate{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}, it.Waypoints)
	})

	t.Run("no route is not an error", func(t *testing.T) {
		_, found, err := rs.Plan(ctx, 1, 3, 3)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown port", func(t *testing.T) {
		_, _, err := rs.Plan(ctx, 99, 3, 10)
		var upe *routing.UnknownPortError
		require.True(t, errors.As(err, &upe))
		assert.Equal(t, int64(99), upe.PortID)
	})

	t.Run("cancelled caller", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := rs.Plan(cctx, 1, 3, 10)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRoutingServiceLookups(t *testing.T) {
	rs := loaded(t)

	ports, err := rs.Ports()
	require.NoError(t, err)
	require.Len(t, ports, 3)
	assert.Equal(t, int64(1), ports[0].ID)

	p, err := rs.Port(2)
	require.NoError(t, err)
	assert.Equal(t, "Colombo", p.Name)

	_, err = rs.Port(42)
	assert.ErrorIs(t, err, ErrNoSuchPort)
	assert.NotErrorIs(t, err, routing.ErrPortNotFound, "a lookup miss is not a data fault")

	_, err = rs.PortDetail(42)
	assert.ErrorIs(t, err, ErrNoSuchPort)

	detail, err := rs.PortDetail(2)
	require.NoError(t, err)
	assert.Len(t, detail.Segments, 2)

	near, dist, err := rs.Nearest(routing.Coordinate{Lat: 25, Lon: 55})
	require.NoError(t, err)
	assert.Equal(t, int64(3), near.ID)
	assert.Less(t, dist, 10.0)

	stats, err := rs.Stats()
	require.NoError(t, err)
	assert.Equal(t, "memory", stats.Source)
	assert.Equal(t, 3, stats.CatalogPorts)
	assert.Equal(t, 3, stats.NetworkPorts)
	assert.Equal(t, 6, stats.Segments)
	assert.Equal(t, 1, stats.Skipped)
}

func TestReloadFailureKeepsCurrentSnapshot(t *testing.T) {
	src := &memSource{ds: triangleDataset()}
	rs := NewRoutingService(src, 0)
	first, err := rs.Reload(context.Background())
	require.NoError(t, err)

	src.err = &preprocessing.DataLoadError{Source: "memory", Err: errors.New("disk gone")}
	_, err = rs.Reload(context.Background())
	require.ErrorIs(t, err, preprocessing.ErrDataLoad)

	cur, err := rs.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestReloadOutlivesCallerCancellation(t *testing.T) {
	src := &memSource{ds: triangleDataset()}
	rs := NewRoutingService(src, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := rs.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Catalog.Len())
}

func TestReloadSharedWithCallerThatLeaves(t *testing.T) {
	src := &memSource{ds: triangleDataset(), gate: make(chan struct{})}
	rs := NewRoutingService(src, 0)

	leaving, leave := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := rs.Reload(leaving)
		firstDone <- err
	}()
	require.Eventually(t, func() bool { return src.loads.Load() == 1 }, time.Second, 5*time.Millisecond)

	secondDone := make(chan error, 1)
	go func() {
		_, err := rs.Reload(context.Background())
		secondDone <- err
	}()
	leave()
	time.Sleep(20 * time.Millisecond)
	close(src.gate)

	assert.NoError(t, <-firstDone)
	assert.NoError(t, <-secondDone)
	_, err := rs.Current()
	assert.NoError(t, err)
}

func TestReloadRejectsUnusableData(t *testing.T) {
	t.Run("no valid routes", func(t *testing.T) {
		ds := triangleDataset()
		ds.Routes = ds.Routes[3:]
		_, err := NewRoutingService(&memSource{ds: ds}, 0).Reload(context.Background())
		assert.ErrorIs(t, err, preprocessing.ErrDataLoad)
	})

	t.Run("duplicate port ids", func(t *testing.T) {
		ds := triangleDataset()
		ds.Ports = append(ds.Ports, routing.Port{ID: 1, Name: "Again"})
		_, err := NewRoutingService(&memSource{ds: ds}, 0).Reload(context.Background())
		assert.ErrorIs(t, err, preprocessing.ErrDataLoad)
		assert.ErrorIs(t, err, routing.ErrDuplicatePort)
	})
}

func TestConcurrentReloadsShareOneLoad(t *testing.T) {
	src := &memSource{ds: triangleDataset(), gate: make(chan struct{})}
	rs := NewRoutingService(src, 0)

	const callers = 8
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := rs.Reload(context.Background())
			assert.NoError(t, err)
			snaps[i] = snap
		}(i)
	}

	require.Eventually(t, func() bool { return src.loads.Load() == 1 }, time.Second, 5*time.Millisecond)
	// give the remaining callers time to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.loads.Load())
	for _, s := range snaps {
		assert.Same(t, snaps[0], s)
	}
}
