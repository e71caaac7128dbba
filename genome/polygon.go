package genome

import (
	"fmt"
	"image/color"
	"math/rand/v2"
)

// Gene shape limits.
const (
	// MinVertices is the smallest vertex count of a polygon gene.
	MinVertices = 3

	// MaxVertices is the largest vertex count of a polygon gene.
	MaxVertices = 6

	// MinInitialAlpha is the lowest alpha drawn for a freshly created gene.
	// Mutation may move alpha anywhere in [0, 255] afterwards.
	MinInitialAlpha = 128

	// MaxOffset bounds the per-coordinate and per-channel perturbation.
	MaxOffset = 10
)

// Point is an integer vertex position in canvas pixels.
type Point struct {
	X, Y int
}

// Polygon is one semi-transparent polygon gene.
//
// Only the first N entries of Vertices are meaningful. Polygon is a value
// type: assigning or passing it copies every vertex.
type Polygon struct {
	Vertices [MaxVertices]Point
	N        int
	Color    color.NRGBA
}

// NewRandomPolygon returns a gene with a uniform vertex count in
// [MinVertices, MaxVertices], uniform vertices inside width x height and a
// uniform color whose alpha lies in [MinInitialAlpha, 255].
func NewRandomPolygon(rng *rand.Rand, width, height int) Polygon {
	var p Polygon
	p.N = MinVertices + rng.IntN(MaxVertices-MinVertices+1)
	for i := 0; i < p.N; i++ {
		p.Vertices[i] = Point{X: rng.IntN(width), Y: rng.IntN(height)}
	}
	p.Color = color.NRGBA{
		R: uint8(rng.IntN(256)),
		G: uint8(rng.IntN(256)),
		B: uint8(rng.IntN(256)),
		A: uint8(MinInitialAlpha + rng.IntN(256-MinInitialAlpha)),
	}
	return p
}

// Points returns the active vertices. The slice aliases p's storage.
func (p *Polygon) Points() []Point {
	return p.Vertices[:p.N]
}

// mutate applies one vertex or one color perturbation, chosen uniformly.
func (p *Polygon) mutate(rng *rand.Rand, width, height int) {
	if rng.IntN(2) == 0 {
		i := rng.IntN(p.N)
		v := &p.Vertices[i]
		v.X = clamp(v.X+offset(rng), 0, width-1)
		v.Y = clamp(v.Y+offset(rng), 0, height-1)
		return
	}
	p.Color = color.NRGBA{
		R: clampChannel(int(p.Color.R) + offset(rng)),
		G: clampChannel(int(p.Color.G) + offset(rng)),
		B: clampChannel(int(p.Color.B) + offset(rng)),
		A: clampChannel(int(p.Color.A) + offset(rng)),
	}
}

// validate checks the vertex count and that vertices lie in bounds.
func (p *Polygon) validate(width, height int) error {
	if p.N < MinVertices || p.N > MaxVertices {
		return fmt.Errorf("%w: vertex count %d outside [%d, %d]", ErrInvalidGenome, p.N, MinVertices, MaxVertices)
	}
	for i, v := range p.Points() {
		if v.X < 0 || v.X >= width || v.Y < 0 || v.Y >= height {
			return fmt.Errorf("%w: vertex %d at (%d, %d) outside %dx%d", ErrInvalidGenome, i, v.X, v.Y, width, height)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampChannel(v int) uint8 {
	return uint8(clamp(v, 0, 255))
}
