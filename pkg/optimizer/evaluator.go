package optimizer

import (
	"context"
	"math"
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/segmentcache"

	"go.uber.org/zap"
)

// Evaluator. walks an ordering's consecutive pairs, applies live-traffic
// multipliers on top of the cached free-flow durations and derives the
// aggregate route metrics.
type Evaluator struct {
	cache   segmentcache.SegmentCache
	traffic TrafficProvider
	log     *zap.Logger
}

func NewEvaluator(cache segmentcache.SegmentCache, traffic TrafficProvider,
	log *zap.Logger) *Evaluator {
	return &Evaluator{
		cache:   cache,
		traffic: traffic,
		log:     log,
	}
}

// Evaluate. compute a Route for the given ordering. originalDistance is the
// cost of the as-received ordering and feeds the savings percentage.
func (e *Evaluator) Evaluate(ctx context.Context, driverID string,
	points []datastructure.RoutePoint, ord datastructure.Ordering,
	originalDistance float64) (*datastructure.Route, error) {

	var (
		distance float64
		duration float64
		degraded bool
	)

	coords := make([]geo.Coordinate, 0, len(ord))
	orderedPoints := make([]datastructure.RoutePoint, 0, len(ord))
	for _, idx := range ord {
		coords = append(coords, points[idx].Location)
		orderedPoints = append(orderedPoints, points[idx])
	}

	for i := 1; i < len(ord); i++ {
		from := points[ord[i-1]].Location
		to := points[ord[i]].Location

		seg, err := e.cache.Get(ctx, from, to)
		if err != nil {
			return nil, err
		}
		if seg.Estimated {
			degraded = true
		}

		// traffic samples are ephemeral, fetched per evaluation pass
		multiplier := 1.0
		if e.traffic != nil {
			if sample, ok := e.traffic.TrafficSample(ctx, from, to); ok {
				multiplier = sample.DurationMultiplier()
			}
		}

		distance += seg.Distance
		duration += seg.Duration * multiplier
	}

	savings := 0.0
	if originalDistance > 0 {
		savings = math.Max(0, (originalDistance-distance)/originalDistance*100.0)
	}

	return &datastructure.Route{
		DriverID: driverID,
		Points:   orderedPoints,
		Metrics: datastructure.RouteMetrics{
			Distance:     distance,
			Duration:     duration,
			FuelCost:     geo.FuelCost(distance),
			CO2Emissions: geo.CO2Emissions(distance),
		},
		SavingsPercentage: savings,
		Polyline:          geo.PolylineFromCoords(coords),
		Degraded:          degraded,
		ComputedAt:        time.Now(),
	}, nil
}
