// Package selection picks parents from a scored population.
package selection

import (
	"math/rand/v2"

	"github.com/gogpu/polyevo/genome"
)

// DefaultTournamentSize is the number of contestants drawn per selection.
const DefaultTournamentSize = 5

// Tournament implements tournament selection with replacement.
type Tournament struct {
	// Size is the number of contestants. Values below 1 are treated as 1.
	Size int
}

// NewTournament returns a tournament selector of the given size.
func NewTournament(size int) *Tournament {
	return &Tournament{Size: size}
}

// Select draws Size individuals uniformly with replacement and returns the
// fittest. Ties go to the first contestant drawn. The returned value is a
// reference into population, not a copy. Select returns nil for an empty
// population.
func (t *Tournament) Select(rng *rand.Rand, population []*genome.Individual) *genome.Individual {
	if len(population) == 0 {
		return nil
	}
	size := t.Size
	if size < 1 {
		size = 1
	}
	best := population[rng.IntN(len(population))]
	for i := 1; i < size; i++ {
		c := population[rng.IntN(len(population))]
		if c.Fitness() > best.Fitness() {
			best = c
		}
	}
	return best
}
