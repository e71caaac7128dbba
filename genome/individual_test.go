package genome

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertInBounds(t *testing.T, ind *Individual, numPolygons int) {
	t.Helper()
	require.Equal(t, numPolygons, ind.Len())
	require.NoError(t, ind.Validate())
}

func TestNewRandom_Invariants(t *testing.T) {
	rng := NewRand(7)
	for _, tc := range []struct {
		name          string
		polygons      int
		width, height int
	}{
		{"single", 1, 1, 1},
		{"square", 50, 400, 400},
		{"wide", 10, 640, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ind := NewRandom(rng, tc.polygons, tc.width, tc.height)
			assertInBounds(t, ind, tc.polygons)
			assert.False(t, ind.Scored())
			assert.True(t, math.IsInf(ind.Fitness(), -1))
			for i := 0; i < ind.Len(); i++ {
				g := ind.Gene(i)
				assert.GreaterOrEqual(t, g.N, MinVertices)
				assert.LessOrEqual(t, g.N, MaxVertices)
				assert.GreaterOrEqual(t, int(g.Color.A), MinInitialAlpha)
			}
		})
	}
}

func TestNewRandom_PanicsOnBadArgs(t *testing.T) {
	assert.Panics(t, func() { NewRandom(NewRand(1), 0, 10, 10) })
	assert.Panics(t, func() { NewRandom(NewRand(1), 5, 0, 10) })
}

func TestNewRandom_SeedDeterminism(t *testing.T) {
	a := NewRandom(NewRand(42), 20, 100, 80)
	b := NewRandom(NewRand(42), 20, 100, 80)
	c := NewRandom(NewRand(43), 20, 100, 80)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestClone_IsIndependent(t *testing.T) {
	orig := NewRandom(NewRand(3), 8, 50, 50)
	orig.SetFitness(2.5)
	snapshot := orig.Genes()

	c := orig.Clone()
	require.True(t, c.Equal(orig))
	assert.Equal(t, 2.5, c.Fitness())
	assert.True(t, c.Scored())

	g := c.Gene(0)
	g.Vertices[0] = Point{X: 49, Y: 49}
	g.Color = color.NRGBA{1, 2, 3, 4}
	c.SetGene(0, g)
	c.Mutate(NewRand(9), 1)

	assert.Equal(t, snapshot, orig.Genes(), "mutating a clone must not touch the original")
	assert.Equal(t, 2.5, orig.Fitness())
}

func TestMutate_StaysInBounds(t *testing.T) {
	rng := NewRand(11)
	ind := NewRandom(rng, 30, 20, 15)
	for i := 0; i < 2000; i++ {
		ind.Mutate(rng, 0.5)
	}
	assertInBounds(t, ind, 30)
}

func TestMutate_ClampsAtEdges(t *testing.T) {
	var p Polygon
	p.N = 3
	p.Vertices = [MaxVertices]Point{{0, 0}, {0, 0}, {0, 0}}
	p.Color = color.NRGBA{R: 255, G: 0, B: 255, A: 0}
	ind, err := FromGenes([]Polygon{p}, 2, 2)
	require.NoError(t, err)

	rng := NewRand(5)
	for i := 0; i < 500; i++ {
		ind.Mutate(rng, 1)
		require.NoError(t, ind.Validate())
	}
}

func TestMutate_ZeroProbabilityIsNoop(t *testing.T) {
	ind := NewRandom(NewRand(1), 10, 30, 30)
	ind.SetFitness(1)
	before := ind.Clone()

	ind.Mutate(NewRand(2), 0)

	assert.True(t, ind.Equal(before))
	assert.True(t, ind.Scored(), "untouched individual keeps its fitness")
}

func TestMutate_ResetsFitnessWhenChanged(t *testing.T) {
	ind := NewRandom(NewRand(1), 10, 30, 30)
	ind.SetFitness(1)
	ind.Mutate(NewRand(2), 1)
	assert.False(t, ind.Scored())
}

func TestMutate_PerturbationRange(t *testing.T) {
	rng := NewRand(21)
	for i := 0; i < 300; i++ {
		ind := NewRandom(rng, 1, 1000, 1000)
		before := ind.Gene(0)
		ind.Mutate(rng, 1)
		after := ind.Gene(0)

		for j := 0; j < before.N; j++ {
			assert.LessOrEqual(t, absInt(after.Vertices[j].X-before.Vertices[j].X), MaxOffset)
			assert.LessOrEqual(t, absInt(after.Vertices[j].Y-before.Vertices[j].Y), MaxOffset)
		}
		assert.LessOrEqual(t, absInt(int(after.Color.R)-int(before.Color.R)), MaxOffset)
		assert.LessOrEqual(t, absInt(int(after.Color.A)-int(before.Color.A)), MaxOffset)
	}
}

func TestFromGenes_Validation(t *testing.T) {
	good := Polygon{N: 3, Vertices: [MaxVertices]Point{{0, 0}, {4, 0}, {0, 4}}}
	tooFew := Polygon{N: 2}
	outside := Polygon{N: 3, Vertices: [MaxVertices]Point{{0, 0}, {5, 0}, {0, 4}}}

	_, err := FromGenes([]Polygon{good}, 5, 5)
	require.NoError(t, err)

	_, err = FromGenes([]Polygon{tooFew}, 5, 5)
	assert.ErrorIs(t, err, ErrInvalidGenome)

	_, err = FromGenes([]Polygon{outside}, 5, 5)
	assert.ErrorIs(t, err, ErrInvalidGenome)

	_, err = FromGenes(nil, 5, 5)
	assert.ErrorIs(t, err, ErrInvalidGenome)

	_, err = FromGenes([]Polygon{good}, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidBounds)
}

func TestDeriveRand_Streams(t *testing.T) {
	a := DeriveRand(99, 0)
	b := DeriveRand(99, 0)
	c := DeriveRand(99, 1)
	av, bv, cv := a.Uint64(), b.Uint64(), c.Uint64()
	assert.Equal(t, av, bv)
	assert.NotEqual(t, av, cv)
}

func TestNewRand_ZeroSeedIsDefault(t *testing.T) {
	assert.Equal(t, NewRand(0).Uint64(), NewRand(defaultSeed).Uint64())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
