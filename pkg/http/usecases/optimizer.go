package usecases

import (
	"context"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/optimizer"

	"go.uber.org/zap"
)

// OptimizerService. thin orchestration between the HTTP boundary and the
// optimization core.
type OptimizerService struct {
	log         *zap.Logger
	controller  RouteController
	suggestions Suggester
	routes      *optimizer.RouteStore
}

func NewOptimizerService(log *zap.Logger, controller RouteController,
	suggestions Suggester, routes *optimizer.RouteStore) *OptimizerService {
	return &OptimizerService{
		log:         log,
		controller:  controller,
		suggestions: suggestions,
		routes:      routes,
	}
}

func (s *OptimizerService) OptimizeRoute(ctx context.Context, driverID string,
	lat, lon float64, obligations []datastructure.Obligation,
) (*datastructure.Route, []datastructure.AlternativeRoute, error) {
	route, err := s.controller.OptimizeRoute(ctx, driverID, geo.NewCoordinate(lat, lon), obligations)
	if err != nil {
		return nil, nil, err
	}
	return route, s.routes.Alternatives(driverID), nil
}

func (s *OptimizerService) UpdateRouteRealtime(ctx context.Context, driverID string,
	lat, lon float64) (*datastructure.Route, error) {
	return s.controller.UpdateRouteRealtime(ctx, driverID, geo.NewCoordinate(lat, lon))
}

func (s *OptimizerService) GetRouteSuggestions(ctx context.Context, driverID string,
	lat, lon float64, limit int) (*datastructure.RouteSuggestions, error) {
	return s.suggestions.GetRouteSuggestions(ctx, driverID, geo.NewCoordinate(lat, lon), limit)
}
