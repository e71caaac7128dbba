// Package fitness scores genomes against a target image.
//
// Fitness is the inverse of the mean squared error over the R, G and B
// channels of the rendered genome and the target:
//
//	fitness = 1 / (MSE + Epsilon)
//
// Higher is better. A perfect match scores 1/Epsilon = 1e10.
package fitness

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/polyevo/genome"
	"github.com/gogpu/polyevo/render"
)

// Epsilon keeps fitness finite on a perfect match.
const Epsilon = 1e-10

var (
	// ErrSizeMismatch is returned when two buffers have different bounds.
	ErrSizeMismatch = errors.New("fitness: image size mismatch")

	// ErrNilTarget is returned when an evaluator is built without a target.
	ErrNilTarget = errors.New("fitness: nil target image")
)

// RenderError reports a failure to rasterize a genome. It ends the run.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "fitness: render: " + e.Err.Error() }

func (e *RenderError) Unwrap() error { return e.Err }

// Evaluator scores individuals against one immutable target.
// It is safe for concurrent use on distinct individuals.
type Evaluator struct {
	target   *image.RGBA
	renderer render.Renderer
}

// NewEvaluator returns an evaluator for target using r. The target must not
// be modified afterwards.
func NewEvaluator(target *image.RGBA, r render.Renderer) (*Evaluator, error) {
	if target == nil || target.Bounds().Empty() {
		return nil, ErrNilTarget
	}
	if r == nil {
		r = render.NewSoftware()
	}
	return &Evaluator{target: target, renderer: r}, nil
}

// Target returns the target buffer. Callers must treat it as read-only.
func (e *Evaluator) Target() *image.RGBA {
	return e.target
}

// Size returns the target dimensions.
func (e *Evaluator) Size() (width, height int) {
	b := e.target.Bounds()
	return b.Dx(), b.Dy()
}

// Evaluate renders ind, computes its fitness, caches it on ind and returns
// it. Render failures are returned as *RenderError and leave ind unscored.
func (e *Evaluator) Evaluate(ind *genome.Individual) (float64, error) {
	w, h := e.Size()
	img, err := e.renderer.Render(ind, w, h)
	if err != nil {
		return 0, &RenderError{Err: err}
	}
	mse, err := MSE(img, e.target)
	if err != nil {
		return 0, &RenderError{Err: err}
	}
	f := FromMSE(mse)
	ind.SetFitness(f)
	return f, nil
}

// FromMSE converts a mean squared error into a fitness value.
func FromMSE(mse float64) float64 {
	return 1 / (mse + Epsilon)
}

// MSE returns the mean squared error per channel over R, G and B of a and b.
// Alpha is ignored.
func MSE(a, b *image.RGBA) (float64, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	w, h := ab.Dx(), ab.Dy()
	if w == 0 || h == 0 {
		return 0, nil
	}

	var sum uint64
	for y := 0; y < h; y++ {
		ra := a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+y):]
		rb := b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+y):]
		for x := 0; x < w*4; x += 4 {
			dr := int64(ra[x]) - int64(rb[x])
			dg := int64(ra[x+1]) - int64(rb[x+1])
			db := int64(ra[x+2]) - int64(rb[x+2])
			sum += uint64(dr*dr + dg*dg + db*db)
		}
	}
	return float64(sum) / float64(w*h*3), nil
}
