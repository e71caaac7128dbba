// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"

	"github.com/gogpu/polyevo/genome"
)

// ErrInvalidDimensions is returned when a render is requested for a
// non-positive canvas size.
var ErrInvalidDimensions = errors.New("render: invalid dimensions")

// Renderer converts an individual into a width x height RGBA buffer.
//
// Implementations must be deterministic given the genome and dimensions and
// safe for concurrent use on distinct individuals.
type Renderer interface {
	Render(ind *genome.Individual, width, height int) (*image.RGBA, error)
}

// Func adapts an ordinary function to the Renderer interface.
type Func func(ind *genome.Individual, width, height int) (*image.RGBA, error)

// Render calls f(ind, width, height).
func (f Func) Render(ind *genome.Individual, width, height int) (*image.RGBA, error) {
	return f(ind, width, height)
}
