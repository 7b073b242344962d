package optimizer

import (
	"context"

	"reskflow-route-optimizer/pkg/datastructure"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ALTERNATIVE_FASTEST   = "fastest"
	ALTERNATIVE_EFFICIENT = "most_efficient"
)

// generateAlternatives. derive the time-prioritized and fuel-prioritized
// variants from the same point arena, each carrying its trade-off delta
// against the primary route. alternatives are best-effort, a failed variant
// is logged and skipped.
func (o *Optimizer) generateAlternatives(ctx context.Context, driverID string,
	prob *problem, primary *datastructure.Route,
	originalDistance float64) []datastructure.AlternativeRoute {

	// duration-weighted and fuel-weighted objectives need the traffic
	// multipliers for every pair, not just the primary route's legs
	prob.matrix.fetchTraffic(ctx, prob.points, o.traffic)

	variants := []Objective{OBJECTIVE_DURATION, OBJECTIVE_FUEL}
	names := []string{ALTERNATIVE_FASTEST, ALTERNATIVE_EFFICIENT}
	results := make([]*datastructure.Route, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for vi, objective := range variants {
		vi, objective := vi, objective
		g.Go(func() error {
			vprob := &problem{
				points:    prob.points,
				matrix:    prob.matrix,
				validator: prob.validator,
				objective: objective,
				seed:      prob.seed,
			}
			strategy := SelectStrategy(len(vprob.points) - 1)
			ord, err := strategy.Optimize(gctx, vprob)
			if err != nil {
				o.log.Warn("alternative route variant failed",
					zap.String("driver", driverID),
					zap.String("objective", objective.String()),
					zap.Error(err))
				return nil
			}
			if !vprob.validator.PrecedenceFeasible(ord) {
				ord = nearestNeighborOrdering(vprob, false)
			}
			route, err := o.evaluator.Evaluate(gctx, driverID, vprob.points, ord, originalDistance)
			if err != nil {
				o.log.Warn("alternative route evaluation failed",
					zap.String("driver", driverID), zap.Error(err))
				return nil
			}
			results[vi] = route
			return nil
		})
	}
	_ = g.Wait()

	alternatives := make([]datastructure.AlternativeRoute, 0, len(variants))
	for vi, route := range results {
		if route == nil {
			continue
		}
		alternatives = append(alternatives, datastructure.AlternativeRoute{
			Name:  names[vi],
			Route: route,
			Comparison: datastructure.RouteComparison{
				DistanceDelta: route.Metrics.Distance - primary.Metrics.Distance,
				DurationDelta: route.Metrics.Duration - primary.Metrics.Duration,
			},
		})
	}
	return alternatives
}
