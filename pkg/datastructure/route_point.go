package datastructure

import (
	"time"

	"reskflow-route-optimizer/pkg/geo"
)

// enum of route point kind
type PointKind uint8

const (
	START PointKind = iota
	PICKUP
	DELIVERY
	WAYPOINT
)

func (k PointKind) String() string {
	switch k {
	case START:
		return "start"
	case PICKUP:
		return "pickup"
	case DELIVERY:
		return "reskflow"
	case WAYPOINT:
		return "waypoint"
	default:
		return "unknown"
	}
}

type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewTimeWindow(start, end time.Time) *TimeWindow {
	return &TimeWindow{Start: start, End: end}
}

func (tw *TimeWindow) Contains(t time.Time) bool {
	return !t.Before(tw.Start) && !t.After(tw.End)
}

// RoutePoint. one visitable stop. created fresh per optimization request and
// never mutated afterwards, orderings reference points by index into the
// request's point arena.
type RoutePoint struct {
	ID           string         `json:"id"`
	Kind         PointKind      `json:"kind"`
	Location     geo.Coordinate `json:"location"`
	ObligationID string         `json:"obligation_id,omitempty"` // empty for START
	Priority     int            `json:"priority,omitempty"`
	Window       *TimeWindow    `json:"time_window,omitempty"`
}

func NewRoutePoint(id string, kind PointKind, loc geo.Coordinate, obligationID string,
	priority int, window *TimeWindow) RoutePoint {
	return RoutePoint{
		ID:           id,
		Kind:         kind,
		Location:     loc,
		ObligationID: obligationID,
		Priority:     priority,
		Window:       window,
	}
}

// Obligation. a single reskflow's paired pickup and drop-off requirement,
// as returned by the obligation store collaborator.
type Obligation struct {
	ID            string
	PickupLoc     geo.Coordinate
	DropoffLoc    geo.Coordinate
	PickupWindow  *TimeWindow
	DropoffWindow *TimeWindow
	Priority      int
	Payout        float64 // 0 when unknown, suggestion scoring falls back to an estimate
	AcceptedAt    time.Time
}

// Ordering. a visiting order expressed as indices into the point arena.
// index 0 of the arena is always the start point and always occupies
// position 0 of any ordering.
type Ordering []int

func IdentityOrdering(n int) Ordering {
	ord := make(Ordering, n)
	for i := range ord {
		ord[i] = i
	}
	return ord
}

func (o Ordering) Clone() Ordering {
	c := make(Ordering, len(o))
	copy(c, o)
	return c
}
