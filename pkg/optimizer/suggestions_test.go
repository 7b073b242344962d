package optimizer

import (
	"context"
	"testing"
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSuggestionService() (*SuggestionService, *InMemoryObligationStore, *RouteStore) {
	obligations := NewInMemoryObligationStore()
	routes := NewRouteStore()
	return NewSuggestionService(obligations, routes, zap.NewNop()), obligations, routes
}

func TestGetRouteSuggestionsRanking(t *testing.T) {
	s, obligations, _ := testSuggestionService()
	driverLoc := geo.NewCoordinate(40.0, -74.0)
	deadline := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	obligations.AddUnassigned(datastructure.Obligation{
		ID:         "near-cheap",
		PickupLoc:  geo.NewCoordinate(40.005, -74.0),
		DropoffLoc: geo.NewCoordinate(40.01, -74.0),
		Payout:     4.0,
	})
	obligations.AddUnassigned(datastructure.Obligation{
		ID:            "near-rich",
		PickupLoc:     geo.NewCoordinate(40.01, -74.0),
		DropoffLoc:    geo.NewCoordinate(40.02, -74.0),
		Payout:        25.0,
		DropoffWindow: datastructure.NewTimeWindow(deadline.Add(-time.Hour), deadline),
	})
	// well outside the 8 km search radius
	obligations.AddUnassigned(datastructure.Obligation{
		ID:         "far",
		PickupLoc:  geo.NewCoordinate(41.0, -74.0),
		DropoffLoc: geo.NewCoordinate(41.01, -74.0),
		Payout:     100.0,
	})

	got, err := s.GetRouteSuggestions(context.Background(), "d1", driverLoc, 5)
	require.NoError(t, err)

	require.Len(t, got.HighValue, 2, "out-of-radius obligations are excluded")
	require.Equal(t, "near-rich", got.HighValue[0].Obligation.ID)
	require.Equal(t, "near-cheap", got.HighValue[1].Obligation.ID)

	require.Len(t, got.TimeSensitive, 1, "only deadline-bearing obligations qualify")
	require.Equal(t, "near-rich", got.TimeSensitive[0].Obligation.ID)

	for _, sg := range got.HighValue {
		require.Greater(t, sg.Score, 0.0)
		require.Greater(t, sg.Earnings, 0.0)
	}
}

func TestGetRouteSuggestionsLimit(t *testing.T) {
	s, obligations, _ := testSuggestionService()
	for _, ob := range lineObligations(4) {
		ob.Payout = 10.0
		obligations.AddUnassigned(ob)
	}

	got, err := s.GetRouteSuggestions(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0), 2)
	require.NoError(t, err)
	require.Len(t, got.HighValue, 2)
	require.Len(t, got.Efficient, 2)
}

func TestGetRouteSuggestionsEstimatedEarnings(t *testing.T) {
	s, obligations, _ := testSuggestionService()
	obligations.AddUnassigned(datastructure.Obligation{
		ID:         "no-payout",
		PickupLoc:  geo.NewCoordinate(40.01, -74.0),
		DropoffLoc: geo.NewCoordinate(40.05, -74.0),
	})

	got, err := s.GetRouteSuggestions(context.Background(), "d1",
		geo.NewCoordinate(40.0, -74.0), 5)
	require.NoError(t, err)
	require.Len(t, got.HighValue, 1)

	trip := geo.HaversineDistance(
		geo.NewCoordinate(40.01, -74.0), geo.NewCoordinate(40.05, -74.0))
	require.InDelta(t, geo.EstimateEarnings(trip), got.HighValue[0].Earnings, 1e-9)
}

func TestGetRouteSuggestionsDetourAgainstCurrentRoute(t *testing.T) {
	s, obligations, routes := testSuggestionService()
	driverLoc := geo.NewCoordinate(40.0, -74.0)

	// current route runs due north through 40.02
	routes.Set("d1", &datastructure.Route{
		DriverID: "d1",
		Points: []datastructure.RoutePoint{
			{ID: "start", Location: driverLoc},
			{ID: "a", Location: geo.NewCoordinate(40.02, -74.0)},
		},
	}, nil)

	// pickup sits almost on the route line
	obligations.AddUnassigned(datastructure.Obligation{
		ID:         "on-path",
		PickupLoc:  geo.NewCoordinate(40.01, -74.0001),
		DropoffLoc: geo.NewCoordinate(40.03, -74.0),
		Payout:     5.0,
	})

	got, err := s.GetRouteSuggestions(context.Background(), "d1", driverLoc, 5)
	require.NoError(t, err)
	require.Len(t, got.Efficient, 1)

	sg := got.Efficient[0]
	require.Less(t, sg.DetourKm, sg.DistanceKm,
		"a pickup on the route line detours less than the raw drive to it")
}

func TestGetRouteSuggestionsInvalidLocation(t *testing.T) {
	s, _, _ := testSuggestionService()
	_, err := s.GetRouteSuggestions(context.Background(), "d1",
		geo.NewCoordinate(120.0, -74.0), 5)
	require.Error(t, err)
}

func TestGetRouteSuggestionsIndexRebuildsAfterAssignment(t *testing.T) {
	s, obligations, _ := testSuggestionService()
	driverLoc := geo.NewCoordinate(40.0, -74.0)
	clock := testDepartAt
	s.now = func() time.Time { return clock }

	taken := datastructure.Obligation{
		ID:         "taken",
		PickupLoc:  geo.NewCoordinate(40.005, -74.0),
		DropoffLoc: geo.NewCoordinate(40.01, -74.0),
		Payout:     6.0,
	}
	open := datastructure.Obligation{
		ID:         "open",
		PickupLoc:  geo.NewCoordinate(40.01, -74.0),
		DropoffLoc: geo.NewCoordinate(40.02, -74.0),
		Payout:     9.0,
	}
	obligations.AddUnassigned(taken)
	obligations.AddUnassigned(open)

	got, err := s.GetRouteSuggestions(context.Background(), "d1", driverLoc, 5)
	require.NoError(t, err)
	require.Len(t, got.HighValue, 2)

	// another driver accepts one obligation. once the index passes its
	// staleness bound the next query must rebuild and stop suggesting it.
	obligations.Assign("d2", taken)
	clock = clock.Add(suggestionIndexMaxAge + time.Second)

	got, err = s.GetRouteSuggestions(context.Background(), "d1", driverLoc, 5)
	require.NoError(t, err)
	require.Len(t, got.HighValue, 1)
	require.Equal(t, "open", got.HighValue[0].Obligation.ID)
}

func TestRefreshIndex(t *testing.T) {
	s, obligations, _ := testSuggestionService()
	obligations.AddUnassigned(lineObligations(1)[0])

	require.NoError(t, s.RefreshIndex(context.Background()))
	require.Equal(t, 1, s.index.Len())
}
