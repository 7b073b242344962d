package datastructure

// RouteSegment. cost of travelling directly between two coordinates.
// Duration is traffic-free, traffic multipliers are applied per evaluation.
type RouteSegment struct {
	Distance float64 `json:"distance"` // km
	Duration float64 `json:"duration"` // minutes, free-flow
	Polyline string  `json:"polyline,omitempty"`

	// Estimated is set when the segment was derived from a straight-line
	// fallback instead of the mapping provider.
	Estimated bool `json:"estimated,omitempty"`
}

func NewRouteSegment(distanceKm, durationMin float64, polyline string) RouteSegment {
	return RouteSegment{
		Distance: distanceKm,
		Duration: durationMin,
		Polyline: polyline,
	}
}
