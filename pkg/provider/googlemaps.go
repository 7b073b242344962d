package provider

import (
	"context"
	"errors"
	"fmt"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/util"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// GoogleMaps. mapping + traffic provider backed by the Google Maps APIs.
type GoogleMaps struct {
	client *maps.Client
	log    *zap.Logger
}

func NewGoogleMaps(apiKey string, log *zap.Logger) (*GoogleMaps, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMaps{client: client, log: log}, nil
}

func latLng(c geo.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lon)
}

// RouteSegment. one driving leg between two coordinates via the Directions API.
func (g *GoogleMaps) RouteSegment(ctx context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error) {
	req := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return datastructure.RouteSegment{}, util.WrapErrorf(err, util.ErrProviderTimeout,
				"directions request timed out for %s -> %s", latLng(from), latLng(to))
		}
		return datastructure.RouteSegment{}, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return datastructure.RouteSegment{}, util.WrapErrorf(nil, util.ErrNotFound,
			"no driving route found for %s -> %s", latLng(from), latLng(to))
	}

	leg := routes[0].Legs[0]
	return datastructure.NewRouteSegment(
		float64(leg.Distance.Meters)/1000.0,
		leg.Duration.Minutes(),
		routes[0].OverviewPolyline.Points,
	), nil
}

// TrafficSample. compares in-traffic with free-flow duration via the
// Distance Matrix API. ok=false means the caller should assume free flow.
func (g *GoogleMaps) TrafficSample(ctx context.Context, from, to geo.Coordinate) (datastructure.TrafficSample, bool) {
	req := &maps.DistanceMatrixRequest{
		Origins:       []string{latLng(from)},
		Destinations:  []string{latLng(to)},
		Mode:          maps.TravelModeDriving,
		DepartureTime: "now",
	}

	resp, err := g.client.DistanceMatrix(ctx, req)
	if err != nil {
		g.log.Debug("distance matrix unavailable, assuming free flow", zap.Error(err))
		return datastructure.TrafficSample{}, false
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return datastructure.TrafficSample{}, false
	}
	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" || elem.Duration <= 0 || elem.DurationInTraffic <= 0 {
		return datastructure.TrafficSample{}, false
	}

	distKm := float64(elem.Distance.Meters) / 1000.0
	normalSpeed := distKm / elem.Duration.Hours()
	currentSpeed := distKm / elem.DurationInTraffic.Hours()

	return datastructure.NewTrafficSample(currentSpeed, normalSpeed), true
}
