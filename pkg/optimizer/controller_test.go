package optimizer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/segmentcache"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testController() (*Controller, *RouteStore, *InMemoryObligationStore) {
	store := NewRouteStore()
	obligations := NewInMemoryObligationStore()
	c := NewController(testOptimizer(), store, obligations, zap.NewNop())
	return c, store, obligations
}

func drainEvent(t *testing.T, c *Controller) *RouteChange {
	t.Helper()
	select {
	case ev := <-c.Events():
		return &ev
	default:
		return nil
	}
}

func TestUpdateRouteRealtimeNoObligationsFastPath(t *testing.T) {
	c, store, _ := testController()
	store.Set("d1", &datastructure.Route{DriverID: "d1"}, nil)

	route, err := c.UpdateRouteRealtime(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0))
	require.NoError(t, err)
	require.Nil(t, route)

	_, ok := store.Current("d1")
	require.False(t, ok, "stale route must be cleared")
	require.Nil(t, drainEvent(t, c))
}

func TestOptimizeRouteStoresAndEmits(t *testing.T) {
	c, store, _ := testController()

	route, err := c.OptimizeRoute(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0), lineObligations(2))
	require.NoError(t, err)
	require.NotNil(t, route)

	stored, ok := store.Current("d1")
	require.True(t, ok)
	require.Equal(t, route, stored)

	ev := drainEvent(t, c)
	require.NotNil(t, ev, "first route is always a significant change")
	require.Equal(t, "d1", ev.DriverID)
	require.Nil(t, ev.Previous)
}

func TestRecomputeDiscardsInsignificantChange(t *testing.T) {
	c, _, obligations := testController()
	for _, ob := range lineObligations(2) {
		obligations.Assign("d1", ob)
	}

	first, err := c.UpdateRouteRealtime(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0))
	require.NoError(t, err)
	require.NotNil(t, drainEvent(t, c))

	// same obligations from a barely moved driver: same order, tiny delta
	second, err := c.UpdateRouteRealtime(context.Background(), "d1",
		geo.NewCoordinate(40.0001, -74.0))
	require.NoError(t, err)

	require.Nil(t, drainEvent(t, c), "insignificant recompute must not notify")
	require.Equal(t, first, second, "previous plan is kept")
}

// gateCache stalls the first lookup until its context is canceled, so a test
// can hold one optimization run in flight while issuing another.
type gateCache struct {
	segmentcache.SegmentCache
	entered chan struct{}
	stalled int32
}

func newGateCache() *gateCache {
	return &gateCache{
		SegmentCache: testCache(),
		entered:      make(chan struct{}),
	}
}

func (g *gateCache) Get(ctx context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error) {
	if atomic.CompareAndSwapInt32(&g.stalled, 0, 1) {
		close(g.entered)
		<-ctx.Done()
		return datastructure.RouteSegment{}, ctx.Err()
	}
	return g.SegmentCache.Get(ctx, from, to)
}

func TestRecomputeSupersededByNewerUpdate(t *testing.T) {
	cache := newGateCache()
	store := NewRouteStore()
	obligations := NewInMemoryObligationStore()
	c := NewController(NewOptimizer(cache, nil, 42, zap.NewNop()), store, obligations, zap.NewNop())
	for _, ob := range lineObligations(2) {
		obligations.Assign("d1", ob)
	}

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.UpdateRouteRealtime(context.Background(), "d1",
			geo.NewCoordinate(40.0, -74.0))
		firstErr <- err
	}()
	<-cache.entered

	second, err := c.UpdateRouteRealtime(context.Background(), "d1",
		geo.NewCoordinate(40.05, -74.0))
	require.NoError(t, err)
	require.NotNil(t, second)

	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, context.Canceled, "the stale run must be discarded")
	case <-time.After(2 * time.Second):
		t.Fatal("superseded run never returned")
	}

	stored, ok := store.Current("d1")
	require.True(t, ok)
	require.Equal(t, second, stored, "only the fresh run may commit")

	ev := drainEvent(t, c)
	require.NotNil(t, ev)
	require.Equal(t, second, ev.Route)
	require.Nil(t, drainEvent(t, c), "the stale run must not notify")
}

func TestObligationsChangedRecomputes(t *testing.T) {
	c, store, obligations := testController()
	obs := lineObligations(3)
	for _, ob := range obs[:2] {
		obligations.Assign("d1", ob)
	}

	first, err := c.UpdateRouteRealtime(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0))
	require.NoError(t, err)
	require.NotNil(t, drainEvent(t, c))

	// a newly accepted obligation triggers recomputation from the last
	// known position, no location update required
	obligations.Assign("d1", obs[2])
	second, err := c.ObligationsChanged(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, second.Points, len(first.Points)+2)
	require.NotNil(t, drainEvent(t, c), "point count change is significant")

	// completing the last obligation clears the stored route
	for _, ob := range obs {
		obligations.Complete("d1", ob.ID)
	}
	third, err := c.ObligationsChanged(context.Background(), "d1")
	require.NoError(t, err)
	require.Nil(t, third)
	_, ok := store.Current("d1")
	require.False(t, ok)
}

func TestObligationsChangedWithoutCurrentRoute(t *testing.T) {
	c, _, obligations := testController()
	obligations.Assign("d1", lineObligations(1)[0])

	route, err := c.ObligationsChanged(context.Background(), "d1")
	require.NoError(t, err)
	require.Nil(t, route)
	require.Nil(t, drainEvent(t, c))
}

func TestSignificantChange(t *testing.T) {
	base := &datastructure.Route{
		Points: []datastructure.RoutePoint{{ID: "start"}, {ID: "a"}, {ID: "b"}},
		Metrics: datastructure.RouteMetrics{
			Distance: 10.0,
			Duration: 30.0,
		},
	}

	clone := func(distance, duration float64) *datastructure.Route {
		return &datastructure.Route{
			Points: base.Points,
			Metrics: datastructure.RouteMetrics{
				Distance: distance,
				Duration: duration,
			},
		}
	}

	testCases := []struct {
		name string
		prev *datastructure.Route
		next *datastructure.Route
		want bool
	}{
		{"no previous", nil, base, true},
		{"identical", base, clone(10.0, 30.0), false},
		{"5 percent distance", base, clone(10.5, 30.0), false},
		{"15 percent distance", base, clone(11.5, 30.0), true},
		{"15 percent duration", base, clone(10.0, 34.5), true},
		{"different order", base, &datastructure.Route{
			Points:  []datastructure.RoutePoint{{ID: "start"}, {ID: "b"}, {ID: "a"}},
			Metrics: base.Metrics,
		}, true},
		{"different count", base, &datastructure.Route{
			Points:  base.Points[:2],
			Metrics: base.Metrics,
		}, true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, significantChange(tt.prev, tt.next))
		})
	}
}

func TestControllerStateLifecycle(t *testing.T) {
	c, _, _ := testController()
	require.Equal(t, IDLE, c.State("d1"))

	_, err := c.OptimizeRoute(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0), lineObligations(1))
	require.NoError(t, err)
	require.Equal(t, STABLE, c.State("d1"))
}

func TestControllerIndependentDrivers(t *testing.T) {
	c, store, _ := testController()

	for _, driver := range []string{"d1", "d2", "d3"} {
		_, err := c.OptimizeRoute(context.Background(), driver,
			geo.NewCoordinate(40.0, -74.0), lineObligations(2))
		require.NoError(t, err)
	}

	for _, driver := range []string{"d1", "d2", "d3"} {
		route, ok := store.Current(driver)
		require.True(t, ok)
		require.Equal(t, driver, route.DriverID)
	}
}
