package optimizer

import (
	"context"
	"fmt"
	"math"
	"sync"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"

	"go.uber.org/zap"
)

// enum of per-driver controller state
type DriverState uint8

const (
	IDLE DriverState = iota
	COMPUTING
	STABLE
)

// RouteChange. typed event emitted when a recomputation differs enough from
// the previously notified plan. a dispatcher consumes these and performs the
// side-effecting notification, keeping the controller free of I/O.
type RouteChange struct {
	DriverID     string
	Route        *datastructure.Route
	Alternatives []datastructure.AlternativeRoute
	Previous     *datastructure.Route
}

type driverSlot struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	state  DriverState
	gen    uint64
}

// Controller. live re-optimization per driver. computations for different
// drivers run in parallel. for one driver a newer update cancels the
// in-flight computation, and only the newest run may commit its result.
type Controller struct {
	optimizer   *Optimizer
	store       *RouteStore
	obligations ObligationStore
	log         *zap.Logger

	events chan RouteChange

	mu      sync.Mutex
	drivers map[string]*driverSlot
}

func NewController(optimizer *Optimizer, store *RouteStore,
	obligations ObligationStore, log *zap.Logger) *Controller {
	return &Controller{
		optimizer:   optimizer,
		store:       store,
		obligations: obligations,
		log:         log,
		events:      make(chan RouteChange, 64),
		drivers:     make(map[string]*driverSlot),
	}
}

// Events. route-change stream consumed by the notification dispatcher.
func (c *Controller) Events() <-chan RouteChange {
	return c.events
}

func (c *Controller) State(driverID string) DriverState {
	c.mu.Lock()
	slot, ok := c.drivers[driverID]
	c.mu.Unlock()
	if !ok {
		return IDLE
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.state
}

func (c *Controller) slot(driverID string) *driverSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.drivers[driverID]
	if !ok {
		s = &driverSlot{}
		c.drivers[driverID] = s
	}
	return s
}

// OptimizeRoute. explicit one-shot request with caller-supplied obligations.
func (c *Controller) OptimizeRoute(ctx context.Context, driverID string,
	driverLoc geo.Coordinate, obligations []datastructure.Obligation) (*datastructure.Route, error) {
	return c.recompute(ctx, driverID, driverLoc, obligations)
}

// UpdateRouteRealtime. re-optimization entry point for location updates.
// drivers without active obligations take the fast path and get nil back
// without the pipeline running.
func (c *Controller) UpdateRouteRealtime(ctx context.Context, driverID string,
	currentLocation geo.Coordinate) (*datastructure.Route, error) {
	obligations, err := c.obligations.ActiveObligations(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if len(obligations) == 0 {
		c.store.Delete(driverID)
		return nil, nil
	}
	return c.recompute(ctx, driverID, currentLocation, obligations)
}

// ObligationsChanged. re-optimization trigger for an obligation accept,
// completion or cancellation. the driver's last known position is the start
// point of the stored route; a driver without one is picked up by the next
// location update instead.
func (c *Controller) ObligationsChanged(ctx context.Context, driverID string) (*datastructure.Route, error) {
	current, ok := c.store.Current(driverID)
	if !ok || len(current.Points) == 0 {
		return nil, nil
	}
	return c.UpdateRouteRealtime(ctx, driverID, current.Points[0].Location)
}

func (c *Controller) recompute(ctx context.Context, driverID string,
	driverLoc geo.Coordinate, obligations []datastructure.Obligation) (*datastructure.Route, error) {
	slot := c.slot(driverID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// supersede the in-flight computation for this driver: fresher input
	// wins, results are never merged. the slot lock is held only around
	// the takeover and the commit, never across the computation itself,
	// so the cancel lands while the old run is still in flight.
	slot.mu.Lock()
	if slot.cancel != nil {
		slot.cancel()
	}
	slot.cancel = cancel
	slot.state = COMPUTING
	slot.gen++
	gen := slot.gen
	slot.mu.Unlock()

	route, alternatives, err := c.optimizer.OptimizeRoute(runCtx, driverID, driverLoc, obligations)

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if gen != slot.gen {
		// a newer run took over while this one was in flight. its result
		// is authoritative, this one is discarded even if it completed.
		return nil, context.Canceled
	}
	slot.cancel = nil
	slot.state = STABLE
	if err != nil {
		if runCtx.Err() != nil {
			return nil, runCtx.Err()
		}
		return nil, err
	}

	previous, _ := c.store.Current(driverID)
	if !significantChange(previous, route) {
		c.log.Debug("recomputed route not significantly different, discarding",
			zap.String("driver", driverID))
		if previous != nil {
			return previous, nil
		}
		return route, nil
	}

	c.store.Set(driverID, route, alternatives)
	c.emit(RouteChange{
		DriverID:     driverID,
		Route:        route,
		Alternatives: alternatives,
		Previous:     previous,
	})
	return route, nil
}

func (c *Controller) emit(ev RouteChange) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn("route change event buffer full, dropping notification",
			zap.String("driver", ev.DriverID))
	}
}

// significantChange. different point count, different visiting order, or
// more than 10% change in total distance or duration. anything less is
// notification spam.
func significantChange(previous, next *datastructure.Route) bool {
	if previous == nil {
		return true
	}
	if len(previous.Points) != len(next.Points) {
		return true
	}
	if !previous.SameOrder(next) {
		return true
	}
	return relativeDelta(previous.Metrics.Distance, next.Metrics.Distance) > pkg.SIGNIFICANT_CHANGE_FRACTION ||
		relativeDelta(previous.Metrics.Duration, next.Metrics.Duration) > pkg.SIGNIFICANT_CHANGE_FRACTION
}

func relativeDelta(before, after float64) float64 {
	if before == 0 {
		if after == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(after-before) / before
}

// Close. tear down the event stream at shutdown.
func (c *Controller) Close() {
	close(c.events)
}

// ChangeMessage. human-readable summary for the driver notification.
func ChangeMessage(ev RouteChange) string {
	if ev.Previous == nil {
		return fmt.Sprintf("New route ready: %.1f km, %.0f min",
			ev.Route.Metrics.Distance, ev.Route.Metrics.Duration)
	}
	return fmt.Sprintf("Route updated: %.1f km, %.0f min (%.1f%% saved vs unoptimized)",
		ev.Route.Metrics.Distance, ev.Route.Metrics.Duration, ev.Route.SavingsPercentage)
}
