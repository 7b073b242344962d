package datastructure

import (
	"time"
)

type RouteMetrics struct {
	Distance     float64 `json:"distance"`      // km
	Duration     float64 `json:"duration"`      // minutes, traffic-adjusted
	FuelCost     float64 `json:"fuel_cost"`     // currency units
	CO2Emissions float64 `json:"co2_emissions"` // kg
}

// Route. an ordered visiting plan plus derived metrics. owned exclusively by
// the evaluation that produced it.
type Route struct {
	DriverID string       `json:"driver_id"`
	Points   []RoutePoint `json:"points"` // start point at position 0
	Metrics  RouteMetrics `json:"metrics"`

	// SavingsPercentage is relative to the as-received (unoptimized) ordering.
	SavingsPercentage float64 `json:"savings_percentage"`

	Polyline string `json:"polyline,omitempty"`

	// Degraded marks routes computed with fallback segment estimates, so
	// downstream consumers can decide whether to trust the savings number.
	Degraded bool `json:"degraded,omitempty"`

	// Infeasible marks routes where no ordering satisfied every constraint
	// and the best feasible partial ordering was returned instead.
	Infeasible bool `json:"infeasible,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

// SameOrder reports whether both routes visit identical point ids in the
// same sequence.
func (r *Route) SameOrder(other *Route) bool {
	if other == nil || len(r.Points) != len(other.Points) {
		return false
	}
	for i := range r.Points {
		if r.Points[i].ID != other.Points[i].ID {
			return false
		}
	}
	return true
}

type RouteComparison struct {
	DistanceDelta float64 `json:"distance_delta"` // km, relative to the primary route
	DurationDelta float64 `json:"duration_delta"` // minutes, relative to the primary route
}

// AlternativeRoute. a named variant of the primary route with its trade-off
// delta precomputed so callers can present options without recomputation.
type AlternativeRoute struct {
	Name       string          `json:"name"`
	Route      *Route          `json:"route"`
	Comparison RouteComparison `json:"comparison"`
}

// RouteSuggestion. one scored unassigned obligation near a driver.
type RouteSuggestion struct {
	Obligation Obligation `json:"obligation"`
	DistanceKm float64    `json:"distance_km"` // driver -> pickup
	DetourKm   float64    `json:"detour_km"`   // perpendicular distance from the driver's current leg
	Earnings   float64    `json:"earnings"`
	Score      float64    `json:"score"`
}

type RouteSuggestions struct {
	HighValue     []RouteSuggestion `json:"high_value"`
	Efficient     []RouteSuggestion `json:"efficient"`
	TimeSensitive []RouteSuggestion `json:"time_sensitive"`
}
