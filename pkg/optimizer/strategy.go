package optimizer

import (
	"context"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
)

// enum of search objective
type Objective uint8

const (
	OBJECTIVE_DISTANCE Objective = iota
	OBJECTIVE_DURATION
	OBJECTIVE_FUEL
)

func (o Objective) String() string {
	switch o {
	case OBJECTIVE_DISTANCE:
		return "distance"
	case OBJECTIVE_DURATION:
		return "duration"
	case OBJECTIVE_FUEL:
		return "fuel"
	default:
		return "unknown"
	}
}

// problem. one optimization request: an immutable point arena plus its
// prefetched cost matrix, feasibility rules and search objective. strategies
// return fresh orderings, they never mutate shared state.
type problem struct {
	points    []datastructure.RoutePoint
	matrix    *costMatrix
	validator *Validator
	objective Objective
	seed      uint64
}

// legCost. cost of travelling the (from,to) leg under the search objective.
func (p *problem) legCost(from, to int) float64 {
	switch p.objective {
	case OBJECTIVE_DURATION:
		return p.matrix.dur[from][to] * p.matrix.mult[from][to]
	case OBJECTIVE_FUEL:
		// fuel burn follows distance, congested legs are penalized so the
		// efficient variant steers around high-variance traffic
		return p.matrix.dist[from][to] * (1.0 + 0.5*(p.matrix.mult[from][to]-1.0))
	default:
		return p.matrix.dist[from][to]
	}
}

func (p *problem) orderingCost(ord datastructure.Ordering) float64 {
	total := 0.0
	for i := 1; i < len(ord); i++ {
		total += p.legCost(ord[i-1], ord[i])
	}
	return total
}

func (p *problem) orderingDistance(ord datastructure.Ordering) float64 {
	total := 0.0
	for i := 1; i < len(ord); i++ {
		total += p.matrix.dist[ord[i-1]][ord[i]]
	}
	return total
}

// Strategy. interchangeable search algorithm. input is the problem's point
// arena with the start point fixed at position 0, output is a full
// precedence-feasible permutation of the remaining points.
type Strategy interface {
	Name() string
	Optimize(ctx context.Context, prob *problem) (datastructure.Ordering, error)
}

// SelectStrategy. pick the algorithm purely by non-start point count:
// exhaustive search while factorial cost stays tractable, genetic search for
// mid-size sets, nearest-neighbor with 2-opt beyond that.
func SelectStrategy(pointCount int) Strategy {
	switch {
	case pointCount <= pkg.EXACT_SEARCH_MAX_POINTS:
		return &ExactSearch{}
	case pointCount <= pkg.GENETIC_SEARCH_MAX_POINTS:
		return &GeneticSearch{}
	default:
		return &NearestNeighborSearch{}
	}
}
