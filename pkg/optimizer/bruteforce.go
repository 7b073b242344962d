package optimizer

import (
	"context"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/util"
)

// ExactSearch. depth-first enumeration of every precedence-feasible
// permutation of the non-start points, keeping the first-found minimum so
// results are deterministic for a fixed input order. bounded by the 10-point
// strategy ceiling, 10! = 3.6M permutations before precedence pruning.
type ExactSearch struct{}

func (s *ExactSearch) Name() string { return "exact" }

func (s *ExactSearch) Optimize(ctx context.Context, prob *problem) (datastructure.Ordering, error) {
	n := len(prob.points)

	partial := make(datastructure.Ordering, 1, n)
	partial[0] = 0
	used := make([]bool, n)
	used[0] = true

	best := datastructure.Ordering(nil)
	bestCost := pkg.INF_DISTANCE

	var visit func(cost float64) error
	visit = func(cost float64) error {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		if cost >= bestCost {
			// partial already worse than the incumbent, prune
			return nil
		}
		if len(partial) == n {
			best = partial.Clone()
			bestCost = cost
			return nil
		}
		last := partial[len(partial)-1]
		for idx := 1; idx < n; idx++ {
			if used[idx] || !prob.validator.precedenceAllows(idx, partial) {
				continue
			}
			used[idx] = true
			partial = append(partial, idx)
			if err := visit(cost + prob.legCost(last, idx)); err != nil {
				return err
			}
			partial = partial[:len(partial)-1]
			used[idx] = false
		}
		return nil
	}

	if err := visit(0); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, util.WrapErrorf(nil, util.ErrInfeasibleConstraints,
			"no precedence-feasible ordering exists for %d points", n-1)
	}
	return best, nil
}
