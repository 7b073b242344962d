package optimizer

import (
	"context"
	"math"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/util"
)

// NearestNeighborSearch. greedy construction followed by 2-opt local search.
// used for large point sets where exhaustive and genetic search are too
// expensive. the result is a local optimum, not a global one.
type NearestNeighborSearch struct{}

func (s *NearestNeighborSearch) Name() string { return "nearest-neighbor-2opt" }

func (s *NearestNeighborSearch) Optimize(ctx context.Context, prob *problem) (datastructure.Ordering, error) {
	ord := nearestNeighborOrdering(prob, true)
	return twoOptImprove(ctx, prob, ord)
}

// legCostEpsilon bounds the cost gap within which two candidate legs are
// treated as tied.
const legCostEpsilon = 1e-9

// nearestNeighborOrdering. from the current point, append the cheapest
// unvisited point that keeps the route feasible. cost ties break toward the
// higher-priority point, then input order. when no feasible point remains the
// rest is appended as-received, graceful degradation instead of failure.
func nearestNeighborOrdering(prob *problem, checkWindows bool) datastructure.Ordering {
	n := len(prob.points)
	ord := make(datastructure.Ordering, 1, n)
	ord[0] = 0
	used := make([]bool, n)
	used[0] = true

	for len(ord) < n {
		last := ord[len(ord)-1]
		best := -1
		bestCost := 0.0
		for idx := 1; idx < n; idx++ {
			if used[idx] {
				continue
			}
			feasible := prob.validator.precedenceAllows(idx, ord)
			if feasible && checkWindows {
				feasible = prob.validator.CanAppend(idx, ord)
			}
			if !feasible {
				continue
			}
			cost := prob.legCost(last, idx)
			if best < 0 || betterLeg(cost, bestCost, prob.points[idx].Priority, prob.points[best].Priority) {
				bestCost = cost
				best = idx
			}
		}
		if best < 0 {
			// no feasible next stop, append the remainder in input order
			for idx := 1; idx < n; idx++ {
				if !used[idx] {
					ord = append(ord, idx)
					used[idx] = true
				}
			}
			break
		}
		ord = append(ord, best)
		used[best] = true
	}
	return ord
}

// betterLeg. strict cost order with priority as the tie-break: within epsilon
// of the incumbent, the higher-priority point wins.
func betterLeg(cost, bestCost float64, priority, bestPriority int) bool {
	if math.Abs(cost-bestCost) <= legCostEpsilon {
		return priority > bestPriority
	}
	return cost < bestCost
}

// twoOptImprove. reverse the sub-tour (i..j) whenever the reversal is
// precedence-feasible and strictly reduces cost, repeating until no improving
// swap remains. every accepted swap strictly decreases cost, so the loop
// terminates at a local optimum.
func twoOptImprove(ctx context.Context, prob *problem, ord datastructure.Ordering) (datastructure.Ordering, error) {
	n := len(ord)
	best := ord.Clone()
	bestCost := prob.orderingCost(best)

	improved := true
	for improved {
		improved = false
		for i := 1; i < n-1; i++ {
			if util.StopConcurrentOperation(ctx) {
				return nil, ctx.Err()
			}
			for j := i + 1; j < n; j++ {
				candidate := reverseSubTour(best, i, j)
				if !prob.validator.PrecedenceFeasible(candidate) {
					continue
				}
				if cost := prob.orderingCost(candidate); cost < bestCost {
					best = candidate
					bestCost = cost
					improved = true
				}
			}
		}
	}
	return best, nil
}

func reverseSubTour(ord datastructure.Ordering, i, j int) datastructure.Ordering {
	candidate := ord.Clone()
	reversed := util.ReverseG(candidate[i : j+1])
	copy(candidate[i:j+1], reversed)
	return candidate
}
