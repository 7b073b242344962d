package usecases

import (
	"context"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
)

// RouteController. the live re-optimization controller surface the usecase
// layer depends on.
type RouteController interface {
	OptimizeRoute(ctx context.Context, driverID string, driverLoc geo.Coordinate,
		obligations []datastructure.Obligation) (*datastructure.Route, error)
	UpdateRouteRealtime(ctx context.Context, driverID string,
		currentLocation geo.Coordinate) (*datastructure.Route, error)
}

// Suggester. nearby-obligation scoring surface.
type Suggester interface {
	GetRouteSuggestions(ctx context.Context, driverID string, driverLoc geo.Coordinate,
		limit int) (*datastructure.RouteSuggestions, error)
}
