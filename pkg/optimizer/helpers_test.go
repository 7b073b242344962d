package optimizer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/provider"
	"reskflow-route-optimizer/pkg/segmentcache"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDepartAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func testCache() segmentcache.SegmentCache {
	return segmentcache.NewMemoryCache(provider.NewStatic(40.0), time.Hour, zap.NewNop())
}

// lineObligations lays n pickup/drop-off pairs due north of the start so the
// monotone sweep along the line is the unique shortest tour.
func lineObligations(n int) []datastructure.Obligation {
	obs := make([]datastructure.Obligation, 0, n)
	for i := 0; i < n; i++ {
		base := 40.0 + float64(2*i+1)*0.01
		obs = append(obs, datastructure.Obligation{
			ID:         fmt.Sprintf("ob-%d", i),
			PickupLoc:  geo.NewCoordinate(base, -74.0),
			DropoffLoc: geo.NewCoordinate(base+0.01, -74.0),
		})
	}
	return obs
}

func testProblem(t *testing.T, obligations []datastructure.Obligation,
	objective Objective, seed uint64) *problem {
	t.Helper()

	points, err := BuildRoutePoints(geo.NewCoordinate(40.0, -74.0), obligations, zap.NewNop())
	require.NoError(t, err)

	matrix, err := buildCostMatrix(context.Background(), points, testCache())
	require.NoError(t, err)

	return &problem{
		points:    points,
		matrix:    matrix,
		validator: NewValidator(points, matrix, testDepartAt),
		objective: objective,
		seed:      seed,
	}
}

func assertVisitsAllOnce(t *testing.T, ord datastructure.Ordering, n int) {
	t.Helper()
	require.Len(t, ord, n)
	seen := make(map[int]bool, n)
	for _, idx := range ord {
		require.False(t, seen[idx], "point %d visited twice", idx)
		seen[idx] = true
	}
	require.Equal(t, 0, ord[0], "route must begin at the start point")
}
