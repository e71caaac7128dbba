package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/polyevo/genome"
)

func scoredPopulation(fitness ...float64) []*genome.Individual {
	rng := genome.NewRand(1)
	pop := make([]*genome.Individual, len(fitness))
	for i, f := range fitness {
		pop[i] = genome.NewRandom(rng, 2, 10, 10)
		pop[i].SetFitness(f)
	}
	return pop
}

func TestTournament_ReturnsMember(t *testing.T) {
	pop := scoredPopulation(1, 2, 3, 4, 5, 6, 7, 8)
	sel := NewTournament(DefaultTournamentSize)
	rng := genome.NewRand(3)
	for i := 0; i < 200; i++ {
		got := sel.Select(rng, pop)
		require.NotNil(t, got)
		assert.Contains(t, pop, got)
	}
}

func TestTournament_FavoursFitter(t *testing.T) {
	pop := scoredPopulation(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	sel := NewTournament(5)
	rng := genome.NewRand(4)

	var sum float64
	const n = 2000
	for i := 0; i < n; i++ {
		sum += sel.Select(rng, pop).Fitness()
	}
	// Uniform draws average 5.5; the best of five averages well above 8.
	assert.Greater(t, sum/n, 8.0)
}

func TestTournament_SizeOneIsUniform(t *testing.T) {
	pop := scoredPopulation(1, 100)
	sel := NewTournament(1)
	rng := genome.NewRand(5)
	low := 0
	for i := 0; i < 1000; i++ {
		if sel.Select(rng, pop) == pop[0] {
			low++
		}
	}
	assert.InDelta(t, 500, low, 100)
}

func TestTournament_TiesGoToFirstDrawn(t *testing.T) {
	pop := scoredPopulation(7, 7, 7)
	sel := NewTournament(5)

	// Replay the first draw with an identically seeded generator.
	rng := genome.NewRand(9)
	first := pop[genome.NewRand(9).IntN(len(pop))]
	assert.Same(t, first, sel.Select(rng, pop))
}

func TestTournament_Empty(t *testing.T) {
	assert.Nil(t, NewTournament(5).Select(genome.NewRand(1), nil))
}

func TestTournament_UnscoredLoses(t *testing.T) {
	pop := scoredPopulation(1, 2)
	unscored := genome.NewRandom(genome.NewRand(2), 2, 10, 10)
	pop = append(pop, unscored)
	rng := genome.NewRand(6)
	for i := 0; i < 200; i++ {
		got := NewTournament(3).Select(rng, pop)
		if got == unscored {
			// Only possible when every contestant was the unscored one.
			continue
		}
		assert.True(t, got.Scored())
	}
}
