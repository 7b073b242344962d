package controllers

import (
	"context"

	"reskflow-route-optimizer/pkg/datastructure"
)

type OptimizerService interface {
	OptimizeRoute(ctx context.Context, driverID string, lat, lon float64,
		obligations []datastructure.Obligation) (*datastructure.Route, []datastructure.AlternativeRoute, error)
	UpdateRouteRealtime(ctx context.Context, driverID string, lat, lon float64) (*datastructure.Route, error)
	GetRouteSuggestions(ctx context.Context, driverID string, lat, lon float64,
		limit int) (*datastructure.RouteSuggestions, error)
}
