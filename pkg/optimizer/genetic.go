package optimizer

import (
	"context"
	"sort"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/util"

	"golang.org/x/exp/rand"
)

// GeneticSearch. randomized heuristic for mid-size point sets. population 50,
// 100 generations, order crossover, single-swap mutation, elitist selection.
// the RNG is seeded from problem.seed so runs are reproducible, and the best
// chromosome at termination is returned, which is not necessarily the global
// optimum.
type GeneticSearch struct{}

func (s *GeneticSearch) Name() string { return "genetic" }

type chromosome struct {
	ord  datastructure.Ordering
	cost float64
}

func (s *GeneticSearch) Optimize(ctx context.Context, prob *problem) (datastructure.Ordering, error) {
	rng := rand.New(rand.NewSource(prob.seed))
	n := len(prob.points)

	population := make([]chromosome, 0, pkg.GA_POPULATION_SIZE)

	// the as-received ordering seeds the population so the search never
	// returns something worse than the input when the input is feasible
	identity := datastructure.IdentityOrdering(n)
	population = append(population, s.newChromosome(prob, identity))

	for len(population) < pkg.GA_POPULATION_SIZE {
		ord := identity.Clone()
		rng.Shuffle(n-1, func(i, j int) {
			ord[i+1], ord[j+1] = ord[j+1], ord[i+1]
		})
		population = append(population, s.newChromosome(prob, ord))
	}

	for gen := 0; gen < pkg.GA_GENERATIONS; gen++ {
		if util.StopConcurrentOperation(ctx) {
			return nil, ctx.Err()
		}

		// truncation selection: keep the elite, breed the rest from it
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].cost < population[j].cost
		})

		next := make([]chromosome, 0, pkg.GA_POPULATION_SIZE)
		next = append(next, population[:pkg.GA_ELITE_SIZE]...)

		for len(next) < pkg.GA_POPULATION_SIZE {
			a := population[rng.Intn(pkg.GA_ELITE_SIZE)]
			b := population[rng.Intn(pkg.GA_ELITE_SIZE)]

			child := s.orderCrossover(rng, a.ord, b.ord)
			if rng.Float64() < pkg.GA_MUTATION_RATE {
				s.swapMutation(rng, child)
			}
			child = s.repair(prob, child)
			next = append(next, s.newChromosome(prob, child))
		}
		population = next
	}

	best := population[0]
	for _, c := range population[1:] {
		if c.cost < best.cost {
			best = c
		}
	}
	return best.ord, nil
}

func (s *GeneticSearch) newChromosome(prob *problem, ord datastructure.Ordering) chromosome {
	ord = s.repair(prob, ord)
	return chromosome{ord: ord, cost: prob.orderingCost(ord)}
}

// orderCrossover. OX: copy a random contiguous slice from parent a, fill the
// remaining positions left to right with parent b's points in b's order,
// skipping points already placed. position 0 stays the start point.
func (s *GeneticSearch) orderCrossover(rng *rand.Rand, a, b datastructure.Ordering) datastructure.Ordering {
	n := len(a)
	child := make(datastructure.Ordering, n)
	child[0] = 0

	lo := 1 + rng.Intn(n-1)
	hi := 1 + rng.Intn(n-1)
	if lo > hi {
		lo, hi = hi, lo
	}

	placed := make(map[int]bool, n)
	placed[0] = true
	for i := lo; i <= hi; i++ {
		child[i] = a[i]
		placed[a[i]] = true
	}

	bi := 1
	for i := 1; i < n; i++ {
		if i >= lo && i <= hi {
			continue
		}
		for placed[b[bi]] {
			bi++
		}
		child[i] = b[bi]
		placed[b[bi]] = true
	}
	return child
}

func (s *GeneticSearch) swapMutation(rng *rand.Rand, ord datastructure.Ordering) {
	n := len(ord)
	if n < 3 {
		return
	}
	i := 1 + rng.Intn(n-1)
	j := 1 + rng.Intn(n-1)
	ord[i], ord[j] = ord[j], ord[i]
}

// repair. deterministically swap any reskflow found before its paired
// pickup. bounded number of passes, falling back to a nearest-neighbor
// construction when the swaps fail to converge.
func (s *GeneticSearch) repair(prob *problem, ord datastructure.Ordering) datastructure.Ordering {
	for attempt := 0; attempt < pkg.GA_MAX_REPAIR_ATTEMPTS; attempt++ {
		if prob.validator.PrecedenceFeasible(ord) {
			return ord
		}
		pos := make(map[int]int, len(ord))
		for i, idx := range ord {
			pos[idx] = i
		}
		swapped := false
		for i := 1; i < len(ord); i++ {
			p := prob.points[ord[i]]
			if p.Kind != datastructure.DELIVERY {
				continue
			}
			pickupPos := pos[prob.validator.pickupIdx[p.ObligationID]]
			if pickupPos > i {
				ord[i], ord[pickupPos] = ord[pickupPos], ord[i]
				pos[ord[i]] = i
				pos[ord[pickupPos]] = pickupPos
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}
	if prob.validator.PrecedenceFeasible(ord) {
		return ord
	}
	return nearestNeighborOrdering(prob, false)
}
