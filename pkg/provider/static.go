package provider

import (
	"context"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
)

// Static. deterministic offline provider: haversine distance at a fixed
// speed, no traffic. used for local development and tests.
type Static struct {
	speedKmh float64
}

func NewStatic(speedKmh float64) *Static {
	return &Static{speedKmh: speedKmh}
}

func (s *Static) RouteSegment(_ context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error) {
	dist := geo.HaversineDistance(from, to)
	return datastructure.NewRouteSegment(dist, dist/s.speedKmh*60.0,
		geo.PolylineFromCoords([]geo.Coordinate{from, to})), nil
}

func (s *Static) TrafficSample(_ context.Context, _, _ geo.Coordinate) (datastructure.TrafficSample, bool) {
	return datastructure.TrafficSample{}, false
}
