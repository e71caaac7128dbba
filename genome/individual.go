package genome

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// GeneMutationProbability is the per-gene probability used by Mutate when a
// whole individual has been chosen for mutation.
const GeneMutationProbability = 0.1

// Genome errors.
var (
	// ErrInvalidGenome is returned when a genome violates its shape or bounds
	// invariants.
	ErrInvalidGenome = errors.New("genome: invalid genome")

	// ErrInvalidBounds is returned for non-positive canvas dimensions.
	ErrInvalidBounds = errors.New("genome: invalid canvas bounds")
)

// Individual is one candidate solution: a fixed-length list of polygon genes
// over a width x height canvas, plus a cached fitness.
//
// An Individual is not safe for concurrent mutation. During evaluation each
// individual is owned by exactly one task.
type Individual struct {
	genes   []Polygon
	width   int
	height  int
	fitness float64
	scored  bool
}

// NewRandom returns an individual with numPolygons random genes.
// It panics if numPolygons, width or height is not positive; callers are
// expected to validate configuration first.
func NewRandom(rng *rand.Rand, numPolygons, width, height int) *Individual {
	if numPolygons <= 0 || width <= 0 || height <= 0 {
		panic(fmt.Sprintf("genome: NewRandom(%d, %d, %d): non-positive argument", numPolygons, width, height))
	}
	ind := &Individual{
		genes:   make([]Polygon, numPolygons),
		width:   width,
		height:  height,
		fitness: math.Inf(-1),
	}
	for i := range ind.genes {
		ind.genes[i] = NewRandomPolygon(rng, width, height)
	}
	return ind
}

// FromGenes builds an individual from explicit genes, copying them.
// The result is validated against the canvas bounds.
func FromGenes(genes []Polygon, width, height int) (*Individual, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBounds, width, height)
	}
	ind := &Individual{
		genes:   append([]Polygon(nil), genes...),
		width:   width,
		height:  height,
		fitness: math.Inf(-1),
	}
	if err := ind.Validate(); err != nil {
		return nil, err
	}
	return ind, nil
}

// Len returns the number of genes.
func (ind *Individual) Len() int {
	return len(ind.genes)
}

// Gene returns a copy of gene i.
func (ind *Individual) Gene(i int) Polygon {
	return ind.genes[i]
}

// SetGene replaces gene i with a copy of p and clears the cached fitness.
func (ind *Individual) SetGene(i int, p Polygon) {
	ind.genes[i] = p
	ind.ResetFitness()
}

// Genes returns a copy of all genes.
func (ind *Individual) Genes() []Polygon {
	return append([]Polygon(nil), ind.genes...)
}

// Bounds returns the canvas dimensions the genome is constrained to.
func (ind *Individual) Bounds() (width, height int) {
	return ind.width, ind.height
}

// Fitness returns the cached fitness, or -Inf if the individual has not been
// evaluated.
func (ind *Individual) Fitness() float64 {
	return ind.fitness
}

// Scored reports whether a fitness value has been set.
func (ind *Individual) Scored() bool {
	return ind.scored
}

// SetFitness caches f as the individual's fitness.
func (ind *Individual) SetFitness(f float64) {
	ind.fitness = f
	ind.scored = true
}

// ResetFitness marks the individual as not evaluated.
func (ind *Individual) ResetFitness() {
	ind.fitness = math.Inf(-1)
	ind.scored = false
}

// Clone returns a deep copy, including the cached fitness.
func (ind *Individual) Clone() *Individual {
	c := *ind
	c.genes = append([]Polygon(nil), ind.genes...)
	return &c
}

// Equal reports whether two individuals have identical genes and bounds.
// Fitness is ignored.
func (ind *Individual) Equal(other *Individual) bool {
	if ind.width != other.width || ind.height != other.height || len(ind.genes) != len(other.genes) {
		return false
	}
	for i := range ind.genes {
		a, b := &ind.genes[i], &other.genes[i]
		if a.N != b.N || a.Color != b.Color {
			return false
		}
		for j := 0; j < a.N; j++ {
			if a.Vertices[j] != b.Vertices[j] {
				return false
			}
		}
	}
	return true
}

// Mutate perturbs each gene independently with probability perGene. A chosen
// gene gets either a vertex or a color perturbation with equal probability.
// The cached fitness is cleared when any gene changes.
func (ind *Individual) Mutate(rng *rand.Rand, perGene float64) {
	changed := false
	for i := range ind.genes {
		if rng.Float64() < perGene {
			ind.genes[i].mutate(rng, ind.width, ind.height)
			changed = true
		}
	}
	if changed {
		ind.ResetFitness()
	}
}

// Validate checks every gene against the vertex count and canvas bounds.
func (ind *Individual) Validate() error {
	if ind.width <= 0 || ind.height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidBounds, ind.width, ind.height)
	}
	if len(ind.genes) == 0 {
		return fmt.Errorf("%w: no genes", ErrInvalidGenome)
	}
	for i := range ind.genes {
		if err := ind.genes[i].validate(ind.width, ind.height); err != nil {
			return fmt.Errorf("gene %d: %w", i, err)
		}
	}
	return nil
}
