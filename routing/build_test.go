package routing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func lane(from, to int64, dist float64, wps ...Coordinate) RouteRecord {
	return RouteRecord{From: i64(from), To: i64(to), Distance: f64(dist), Waypoints: wps}
}

// triangle is the 1-2 (5), 2-3 (4), 1-3 (20) network.
func triangle(t *testing.T) *Network {
	t.Helper()
	n, rejected := BuildNetwork([]RouteRecord{
		lane(1, 2, 5, Coordinate{1, 1}, Coordinate{1.5, 1.5}),
		lane(2, 3, 4, Coordinate{2, 2}),
		lane(1, 3, 20, Coordinate{3, 3}),
	})
	require.Empty(t, rejected)
	return n
}

func TestBuildNetwork(t *testing.T) {
	t.Run("every lane is mirrored with reversed waypoints", func(t *testing.T) {
		records := []RouteRecord{
			lane(1, 2, 5, Coordinate{1, 1}, Coordinate{1, 2}, Coordinate{1, 3}),
			lane(2, 3, 4),
			lane(3, 4, 0, Coordinate{9, 9}),
			lane(4, 1, 12.5, Coordinate{4, 1}, Coordinate{3, 1}),
		}
		n, rejected := BuildNetwork(records)
		require.Empty(t, rejected)
		assert.Equal(t, 2*len(records), n.SegmentCount())

		for _, id := range n.PortIDs() {
			for _, seg := range n.Segments(id) {
				var mirror *Segment
				for _, back := range n.Segments(seg.ToID) {
					if back.ToID == seg.FromID && back.Distance == seg.Distance {
						mirror = back
						break
					}
				}
				require.NotNil(t, mirror, "segment %d->%d has no mirror", seg.FromID, seg.ToID)
				assert.Equal(t, reversed(seg.Waypoints), mirror.Waypoints)
			}
		}
	})

	t.Run("waypoint lookup is stored in both directions", func(t *testing.T) {
		n := triangle(t)

		fwd, ok := n.Waypoints(1, 2)
		require.True(t, ok)
		assert.Equal(t, []Coordinate{{1, 1}, {1.5, 1.5}}, fwd)

		back, ok := n.Waypoints(2, 1)
		require.True(t, ok)
		assert.Equal(t, []Coordinate{{1.5, 1.5}, {1, 1}}, back)

		_, ok = n.Waypoints(2, 4)
		assert.False(t, ok)
	})

	t.Run("input waypoints are copied", func(t *testing.T) {
		wps := []Coordinate{{1, 1}, {2, 2}}
		n, _ := BuildNetwork([]RouteRecord{lane(1, 2, 3, wps...)})
		wps[0] = Coordinate{99, 99}

		fwd, _ := n.Waypoints(1, 2)
		assert.Equal(t, Coordinate{1, 1}, fwd[0])
	})

	t.Run("parallel lanes are kept and lookup prefers the shorter", func(t *testing.T) {
		n, rejected := BuildNetwork([]RouteRecord{
			lane(1, 2, 10, Coordinate{0, 10}),
			lane(1, 2, 7, Coordinate{0, 7}),
			lane(2, 1, 8, Coordinate{0, 8}),
		})
		require.Empty(t, rejected)
		assert.Len(t, n.Segments(1), 3)
		assert.Len(t, n.Segments(2), 3)

		wp, _ := n.Waypoints(1, 2)
		assert.Equal(t, []Coordinate{{0, 7}}, wp)
	})

	t.Run("malformed records are skipped and reported", func(t *testing.T) {
		n, rejected := BuildNetwork([]RouteRecord{
			lane(1, 2, 5),
			{To: i64(3), Distance: f64(1)},
			{From: i64(2), Distance: f64(1)},
			{From: i64(2), To: i64(3)},
			lane(2, 3, -1),
			lane(2, 3, math.NaN()),
			lane(2, 4, 6),
		})

		require.Len(t, rejected, 5)
		for _, err := range rejected {
			assert.True(t, errors.Is(err, ErrMalformedRoute), "got %v", err)
		}

		var mre *MalformedRouteError
		require.True(t, errors.As(rejected[0], &mre))
		assert.Equal(t, 1, mre.Index)
		assert.Equal(t, "missing from", mre.Reason)

		require.True(t, errors.As(rejected[3], &mre))
		assert.Equal(t, 4, mre.Index)
		assert.Contains(t, mre.Error(), "negative distance")

		assert.Equal(t, []int64{1, 2, 4}, n.PortIDs())
		assert.Equal(t, 4, n.SegmentCount())
		assert.False(t, n.HasPort(3))
	})

	t.Run("records flagged by the decoder are rejected even when complete", func(t *testing.T) {
		bad := lane(1, 2, 5)
		bad.Invalid = "distance must be a number"
		n, rejected := BuildNetwork([]RouteRecord{bad, lane(2, 3, 4)})

		require.Len(t, rejected, 1)
		var mre *MalformedRouteError
		require.True(t, errors.As(rejected[0], &mre))
		assert.Equal(t, 0, mre.Index)
		assert.Equal(t, "distance must be a number", mre.Reason)
		assert.False(t, n.HasPort(1))
		assert.Equal(t, 2, n.SegmentCount())
	})

	t.Run("empty input builds an empty network", func(t *testing.T) {
		n, rejected := BuildNetwork(nil)
		assert.Empty(t, rejected)
		assert.Equal(t, 0, n.PortCount())
		assert.Equal(t, 0, n.SegmentCount())
	})
}

func TestCatalog(t *testing.T) {
	t.Run("indexes ports by id", func(t *testing.T) {
		c, err := NewCatalog([]Port{
			{ID: 3, Name: "Rotterdam", Location: Coordinate{51.95, 4.14}},
			{ID: 1, Name: "Singapore", Location: Coordinate{1.26, 103.84}},
		})
		require.NoError(t, err)

		p, ok := c.Port(3)
		require.True(t, ok)
		assert.Equal(t, "Rotterdam", p.Name)

		_, ok = c.Port(2)
		assert.False(t, ok)

		assert.Equal(t, 2, c.Len())
		ports := c.Ports()
		require.Len(t, ports, 2)
		assert.Equal(t, int64(1), ports[0].ID)
		assert.Equal(t, int64(3), ports[1].ID)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := NewCatalog([]Port{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}})
		assert.ErrorIs(t, err, ErrDuplicatePort)
	})
}
