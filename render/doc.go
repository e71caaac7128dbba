// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render rasterizes genomes into pixel buffers.
//
// The [Renderer] interface is the boundary between the evolution engine and
// the rasterizer. [Software] implements it on top of the gg CPU rasterizer:
// every call draws on a fresh gg.Context, so a single Software value can be
// shared by all evaluation workers.
//
// # Usage
//
//	r := render.NewSoftware()
//	img, err := r.Render(ind, 400, 400)
package render
