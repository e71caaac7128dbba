package imagestore

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
	xdraw "golang.org/x/image/draw"
)

// Flatten composites img over an opaque bg and returns a zero-origin RGBA
// buffer. Transparent target pixels thus compare against the same background
// the renderer paints.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Over)
	return dst
}

// Fit downsizes img with Lanczos resampling so that neither side exceeds
// maxDim, preserving the aspect ratio. Images already within the limit and
// non-positive maxDim return img unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = max(1, h*maxDim/w)
	} else {
		nh = maxDim
		nw = max(1, w*maxDim/h)
	}
	return transform.Resize(img, nw, nh, transform.Lanczos)
}

// PrepareTarget fits img within maxDim and flattens it over opaque white.
func PrepareTarget(img image.Image, maxDim int) *image.RGBA {
	return Flatten(Fit(img, maxDim), color.White)
}
