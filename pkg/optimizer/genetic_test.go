package optimizer

import (
	"context"
	"testing"

	"reskflow-route-optimizer/pkg/datastructure"

	"github.com/stretchr/testify/require"

	"golang.org/x/exp/rand"
)

func TestGeneticSearchFeasibleAndComplete(t *testing.T) {
	// 8 obligations = 17 points, squarely in genetic territory
	prob := testProblem(t, lineObligations(8), OBJECTIVE_DISTANCE, 42)

	s := &GeneticSearch{}
	ord, err := s.Optimize(context.Background(), prob)
	require.NoError(t, err)

	assertVisitsAllOnce(t, ord, len(prob.points))
	require.True(t, prob.validator.PrecedenceFeasible(ord))
}

func TestGeneticSearchSeededReproducible(t *testing.T) {
	s := &GeneticSearch{}

	probA := testProblem(t, lineObligations(7), OBJECTIVE_DISTANCE, 1234)
	first, err := s.Optimize(context.Background(), probA)
	require.NoError(t, err)

	probB := testProblem(t, lineObligations(7), OBJECTIVE_DISTANCE, 1234)
	second, err := s.Optimize(context.Background(), probB)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestGeneticSearchNeverWorseThanIdentity(t *testing.T) {
	// scrambled input so identity is clearly suboptimal
	obs := lineObligations(8)
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
	prob := testProblem(t, obs, OBJECTIVE_DISTANCE, 7)

	s := &GeneticSearch{}
	ord, err := s.Optimize(context.Background(), prob)
	require.NoError(t, err)

	identity := datastructure.IdentityOrdering(len(prob.points))
	require.LessOrEqual(t, prob.orderingCost(ord), prob.orderingCost(identity),
		"identity seeds the population, elitism must never lose it")
}

func TestOrderCrossoverIsPermutation(t *testing.T) {
	prob := testProblem(t, lineObligations(6), OBJECTIVE_DISTANCE, 1)
	n := len(prob.points)

	rng := rand.New(rand.NewSource(99))
	s := &GeneticSearch{}

	a := datastructure.IdentityOrdering(n)
	b := datastructure.IdentityOrdering(n)
	rng.Shuffle(n-1, func(i, j int) {
		b[i+1], b[j+1] = b[j+1], b[i+1]
	})

	for i := 0; i < 50; i++ {
		child := s.orderCrossover(rng, a, b)
		assertVisitsAllOnce(t, child, n)
	}
}

func TestRepairFixesPrecedence(t *testing.T) {
	prob := testProblem(t, lineObligations(3), OBJECTIVE_DISTANCE, 1)
	s := &GeneticSearch{}

	// every reskflow placed before its pickup
	broken := datastructure.Ordering{0, 2, 1, 4, 3, 6, 5}
	repaired := s.repair(prob, broken)

	assertVisitsAllOnce(t, repaired, len(prob.points))
	require.True(t, prob.validator.PrecedenceFeasible(repaired))
}

func TestGeneticSearchCanceled(t *testing.T) {
	prob := testProblem(t, lineObligations(8), OBJECTIVE_DISTANCE, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &GeneticSearch{}
	_, err := s.Optimize(ctx, prob)
	require.Error(t, err)
}
