package controllers

import (
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
)

type obligationInput struct {
	ID         string  `json:"id" validate:"required"`
	PickupLat  float64 `json:"pickup_lat" validate:"required,min=-90,max=90"`
	PickupLon  float64 `json:"pickup_lon" validate:"required,min=-180,max=180"`
	DropoffLat float64 `json:"dropoff_lat" validate:"required,min=-90,max=90"`
	DropoffLon float64 `json:"dropoff_lon" validate:"required,min=-180,max=180"`

	PickupWindowStart  *time.Time `json:"pickup_window_start,omitempty"`
	PickupWindowEnd    *time.Time `json:"pickup_window_end,omitempty"`
	DropoffWindowStart *time.Time `json:"dropoff_window_start,omitempty"`
	DropoffWindowEnd   *time.Time `json:"dropoff_window_end,omitempty"`

	Priority int     `json:"priority,omitempty"`
	Payout   float64 `json:"payout,omitempty"`
}

func (in obligationInput) toObligation() datastructure.Obligation {
	ob := datastructure.Obligation{
		ID:         in.ID,
		PickupLoc:  geo.NewCoordinate(in.PickupLat, in.PickupLon),
		DropoffLoc: geo.NewCoordinate(in.DropoffLat, in.DropoffLon),
		Priority:   in.Priority,
		Payout:     in.Payout,
	}
	if in.PickupWindowStart != nil && in.PickupWindowEnd != nil {
		ob.PickupWindow = datastructure.NewTimeWindow(*in.PickupWindowStart, *in.PickupWindowEnd)
	}
	if in.DropoffWindowStart != nil && in.DropoffWindowEnd != nil {
		ob.DropoffWindow = datastructure.NewTimeWindow(*in.DropoffWindowStart, *in.DropoffWindowEnd)
	}
	return ob
}

type optimizeRouteRequest struct {
	DriverID    string            `json:"driver_id" validate:"required"`
	Lat         float64           `json:"lat" validate:"required,min=-90,max=90"`
	Lon         float64           `json:"lon" validate:"required,min=-180,max=180"`
	Obligations []obligationInput `json:"obligations" validate:"required,min=1,dive"`
}

type updateRouteRequest struct {
	DriverID string  `json:"driver_id" validate:"required"`
	Lat      float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type optimizeRouteResponse struct {
	Route        *datastructure.Route             `json:"route"`
	Alternatives []datastructure.AlternativeRoute `json:"alternatives,omitempty"`
}

func NewOptimizeRouteResponse(route *datastructure.Route,
	alternatives []datastructure.AlternativeRoute) optimizeRouteResponse {
	return optimizeRouteResponse{
		Route:        route,
		Alternatives: alternatives,
	}
}
