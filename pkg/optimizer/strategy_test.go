package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectStrategy(t *testing.T) {
	testCases := []struct {
		pointCount int
		want       string
	}{
		{1, "exact"},
		{10, "exact"},
		{11, "genetic"},
		{25, "genetic"},
		{26, "nearest-neighbor-2opt"},
		{60, "nearest-neighbor-2opt"},
	}

	for _, tt := range testCases {
		require.Equal(t, tt.want, SelectStrategy(tt.pointCount).Name(),
			"pointCount=%d", tt.pointCount)
	}
}

func TestLegCostObjectives(t *testing.T) {
	prob := testProblem(t, lineObligations(1), OBJECTIVE_DISTANCE, 1)
	prob.matrix.mult[0][1] = 2.0

	dist := prob.legCost(0, 1)

	prob.objective = OBJECTIVE_DURATION
	require.InDelta(t, prob.matrix.dur[0][1]*2.0, prob.legCost(0, 1), 1e-9)

	prob.objective = OBJECTIVE_FUEL
	// congestion penalty scales distance by half the extra multiplier
	require.InDelta(t, dist*1.5, prob.legCost(0, 1), 1e-9)
}
