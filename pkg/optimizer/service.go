package optimizer

import (
	"context"
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/segmentcache"
	"reskflow-route-optimizer/pkg/util"

	"go.uber.org/zap"
)

// Optimizer. the one-shot optimization pipeline: point builder, cost matrix,
// strategy selection, evaluation, alternative generation.
type Optimizer struct {
	cache     segmentcache.SegmentCache
	traffic   TrafficProvider
	evaluator *Evaluator
	log       *zap.Logger

	// seed drives the genetic algorithm's RNG. zero means time-based,
	// tests inject a fixed seed for reproducible runs.
	seed uint64
	now  func() time.Time
}

func NewOptimizer(cache segmentcache.SegmentCache, traffic TrafficProvider,
	seed uint64, log *zap.Logger) *Optimizer {
	return &Optimizer{
		cache:     cache,
		traffic:   traffic,
		evaluator: NewEvaluator(cache, traffic, log),
		log:       log,
		seed:      seed,
		now:       time.Now,
	}
}

// OptimizeRoute. compute the primary optimized route plus its fastest and
// most fuel-efficient alternatives for one driver.
func (o *Optimizer) OptimizeRoute(ctx context.Context, driverID string,
	driverLoc geo.Coordinate, obligations []datastructure.Obligation,
) (*datastructure.Route, []datastructure.AlternativeRoute, error) {
	if len(obligations) == 0 {
		return nil, nil, util.WrapErrorf(nil, util.ErrBadParamInput,
			"driver %s has no obligations to optimize", driverID)
	}

	points, err := BuildRoutePoints(driverLoc, obligations, o.log)
	if err != nil {
		return nil, nil, err
	}

	matrix, err := buildCostMatrix(ctx, points, o.cache)
	if err != nil {
		return nil, nil, err
	}

	seed := o.seed
	if seed == 0 {
		seed = uint64(o.now().UnixNano())
	}

	prob := &problem{
		points:    points,
		matrix:    matrix,
		validator: NewValidator(points, matrix, o.now()),
		objective: OBJECTIVE_DISTANCE,
		seed:      seed,
	}

	strategy := SelectStrategy(len(points) - 1)
	o.log.Info("optimizing route",
		zap.String("driver", driverID),
		zap.Int("points", len(points)-1),
		zap.String("strategy", strategy.Name()))

	ord, err := strategy.Optimize(ctx, prob)
	infeasible := false
	if err != nil {
		if util.ErrCode(err) != util.ErrInfeasibleConstraints {
			return nil, nil, err
		}
		// return the best feasible partial construction instead of failing
		ord = nearestNeighborOrdering(prob, false)
		infeasible = true
	}
	if !prob.validator.PrecedenceFeasible(ord) {
		ord = nearestNeighborOrdering(prob, false)
	}

	originalDistance := prob.orderingDistance(datastructure.IdentityOrdering(len(points)))

	route, err := o.evaluator.Evaluate(ctx, driverID, points, ord, originalDistance)
	if err != nil {
		return nil, nil, err
	}
	route.Degraded = route.Degraded || matrix.degraded
	route.Infeasible = infeasible || !prob.validator.IsFeasible(ord)

	alternatives := o.generateAlternatives(ctx, driverID, prob, route, originalDistance)

	return route, alternatives, nil
}
