// Package variation produces offspring from selected parents.
//
// Offspring come from single-point crossover over the polygon index space,
// followed by a two-level mutation gate: MaybeMutate first decides whether an
// offspring mutates at all, then genome.Individual.Mutate rolls once per gene.
package variation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/polyevo/genome"
)

// ErrLengthMismatch is returned when parents have different genome lengths
// or canvas bounds.
var ErrLengthMismatch = errors.New("variation: parent genomes differ in shape")

// Crossover clones both parents and exchanges every gene at or after a
// uniformly drawn point in [0, Len()). Parents are not modified.
func Crossover(rng *rand.Rand, p1, p2 *genome.Individual) (*genome.Individual, *genome.Individual, error) {
	if err := compatible(p1, p2); err != nil {
		return nil, nil, err
	}
	return CrossoverAt(p1, p2, rng.IntN(p1.Len()))
}

// CrossoverAt is Crossover with an explicit crossover point. Offspring one
// holds p1's genes before point and p2's genes from point on; offspring two
// is the mirror image. Both offspring are unscored.
func CrossoverAt(p1, p2 *genome.Individual, point int) (*genome.Individual, *genome.Individual, error) {
	if err := compatible(p1, p2); err != nil {
		return nil, nil, err
	}
	if point < 0 || point > p1.Len() {
		return nil, nil, fmt.Errorf("variation: crossover point %d outside [0, %d]", point, p1.Len())
	}

	o1, o2 := p1.Clone(), p2.Clone()
	for i := point; i < p1.Len(); i++ {
		o1.SetGene(i, p2.Gene(i))
		o2.SetGene(i, p1.Gene(i))
	}
	o1.ResetFitness()
	o2.ResetFitness()
	return o1, o2, nil
}

// MaybeMutate mutates ind with probability rate, using
// genome.GeneMutationProbability for the per-gene roll. It reports whether
// the outer roll selected ind.
func MaybeMutate(rng *rand.Rand, ind *genome.Individual, rate float64) bool {
	if rng.Float64() >= rate {
		return false
	}
	ind.Mutate(rng, genome.GeneMutationProbability)
	return true
}

func compatible(p1, p2 *genome.Individual) error {
	w1, h1 := p1.Bounds()
	w2, h2 := p2.Bounds()
	if p1.Len() != p2.Len() || w1 != w2 || h1 != h2 {
		return fmt.Errorf("%w: %d genes %dx%d vs %d genes %dx%d", ErrLengthMismatch, p1.Len(), w1, h1, p2.Len(), w2, h2)
	}
	if p1.Len() == 0 {
		return fmt.Errorf("%w: empty genome", ErrLengthMismatch)
	}
	return nil
}
