package optimizer

import (
	"time"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
)

// Validator. incremental feasibility checks used inside every search
// strategy. precedence is exact, time windows use an approximation: arrival
// time is the cumulative free-flow duration plus a fixed per-stop service
// time, with early arrivals waiting for the window to open. no full VRP
// time-window calculus.
type Validator struct {
	points    []datastructure.RoutePoint
	matrix    *costMatrix
	pickupIdx map[string]int // obligation id -> arena index of its pickup
	departAt  time.Time
}

func NewValidator(points []datastructure.RoutePoint, matrix *costMatrix,
	departAt time.Time) *Validator {
	pickupIdx := make(map[string]int)
	for i, p := range points {
		if p.Kind == datastructure.PICKUP {
			pickupIdx[p.ObligationID] = i
		}
	}
	return &Validator{
		points:    points,
		matrix:    matrix,
		pickupIdx: pickupIdx,
		departAt:  departAt,
	}
}

// CanAppend reports whether visiting point idx after the partial ordering
// keeps the route feasible.
func (v *Validator) CanAppend(idx int, partial datastructure.Ordering) bool {
	if !v.precedenceAllows(idx, partial) {
		return false
	}
	p := v.points[idx]
	if p.Window == nil {
		return true
	}

	arrival := v.arrivalAt(partial, idx)
	return !arrival.After(p.Window.End)
}

func (v *Validator) precedenceAllows(idx int, partial datastructure.Ordering) bool {
	p := v.points[idx]
	if p.Kind != datastructure.DELIVERY {
		return true
	}
	pickup, ok := v.pickupIdx[p.ObligationID]
	if !ok {
		return false
	}
	for _, visited := range partial {
		if visited == pickup {
			return true
		}
	}
	return false
}

// arrivalAt. estimated arrival time at point idx when appended to partial,
// before any service time at idx itself.
func (v *Validator) arrivalAt(partial datastructure.Ordering, idx int) time.Time {
	depart := v.departAt
	prev := partial[0]
	for _, cur := range partial[1:] {
		arrival := depart.Add(v.travel(prev, cur))
		p := v.points[cur]
		if p.Window != nil && arrival.Before(p.Window.Start) {
			arrival = p.Window.Start // wait for the window to open
		}
		depart = arrival.Add(serviceTime())
		prev = cur
	}
	return depart.Add(v.travel(prev, idx))
}

func (v *Validator) travel(from, to int) time.Duration {
	return time.Duration(v.matrix.dur[from][to] * float64(time.Minute))
}

func serviceTime() time.Duration {
	return time.Duration(pkg.STOP_SERVICE_TIME_MINUTE * float64(time.Minute))
}

// PrecedenceFeasible reports whether every reskflow appears after its
// paired pickup. the ordering must start at the start point.
func (v *Validator) PrecedenceFeasible(ord datastructure.Ordering) bool {
	if len(ord) == 0 || ord[0] != 0 {
		return false
	}
	seen := make(map[int]bool, len(ord))
	for _, idx := range ord {
		p := v.points[idx]
		if p.Kind == datastructure.DELIVERY {
			pickup, ok := v.pickupIdx[p.ObligationID]
			if !ok || !seen[pickup] {
				return false
			}
		}
		seen[idx] = true
	}
	return true
}

// IsFeasible. full precedence plus time-window check for a complete ordering.
func (v *Validator) IsFeasible(ord datastructure.Ordering) bool {
	if !v.PrecedenceFeasible(ord) {
		return false
	}
	depart := v.departAt
	prev := ord[0]
	for _, cur := range ord[1:] {
		arrival := depart.Add(v.travel(prev, cur))
		p := v.points[cur]
		if p.Window != nil {
			if arrival.After(p.Window.End) {
				return false
			}
			if arrival.Before(p.Window.Start) {
				arrival = p.Window.Start
			}
		}
		depart = arrival.Add(serviceTime())
		prev = cur
	}
	return true
}
