// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/polyevo/genome"
)

// Software renders genomes with the gg anti-aliased CPU rasterizer.
//
// Polygons are filled in gene order over an opaque background, so later
// genes are composited on top of earlier ones.
type Software struct {
	background gg.RGBA
}

// SoftwareOption configures a Software renderer.
type SoftwareOption func(*Software)

// WithBackground sets the canvas background. The default is opaque white.
func WithBackground(c color.Color) SoftwareOption {
	return func(s *Software) {
		s.background = gg.FromColor(c)
	}
}

// NewSoftware creates a CPU renderer.
func NewSoftware(opts ...SoftwareOption) *Software {
	s := &Software{background: gg.White}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render draws ind onto a fresh width x height canvas.
func (s *Software) Render(ind *genome.Individual, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	dc := gg.NewContext(width, height)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(s.background)

	for i := 0; i < ind.Len(); i++ {
		p := ind.Gene(i)
		if p.N < genome.MinVertices || p.N > genome.MaxVertices {
			return nil, fmt.Errorf("gene %d: %w: vertex count %d", i, genome.ErrInvalidGenome, p.N)
		}
		dc.SetColor(p.Color)
		pts := p.Points()
		dc.MoveTo(float64(pts[0].X), float64(pts[0].Y))
		for _, v := range pts[1:] {
			dc.LineTo(float64(v.X), float64(v.Y))
		}
		dc.ClosePath()
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("render: fill gene %d: %w", i, err)
		}
	}

	return toRGBA(dc.Image()), nil
}

// toRGBA returns img as *image.RGBA, converting only when necessary.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}
