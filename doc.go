// Package polyevo approximates a target image with semi-transparent
// polygons using a genetic algorithm.
//
// # Overview
//
// An Engine evolves a fixed-size population of genomes. Each genome is an
// ordered list of polygons painted back to front over a white canvas. Every
// generation is rendered and scored in parallel against the target, then
// tournament selection, single-point crossover and per-gene mutation build
// the next generation. The top tenth of the population carries over
// unchanged.
//
// # Quick Start
//
//	img, _ := imagestore.FileStore{}.Load("target.png")
//
//	cfg := polyevo.DefaultConfig()
//	cfg.MaxGenerations = 5000
//
//	res, err := polyevo.Run(ctx, img, cfg,
//	    polyevo.WithSeed(42),
//	    polyevo.WithCheckpointDir("out"),
//	)
//
// # Lifecycle
//
// An Engine moves through Initializing, Running, Stopping and Terminated.
// Stop is cooperative: RequestStop or cancelling the context passed to Start
// takes effect at the next generation boundary, after the whole population
// has been scored. The best individual found so far can be read at any time
// with CurrentBest.
//
// # Checkpoints
//
// Every new best individual is rendered and written to the checkpoint
// directory on a background goroutine, so slow disks never stall evolution.
// Save failures are logged and counted but do not stop the run.
//
// # Logging
//
// polyevo is silent by default. Call SetLogger to receive lifecycle,
// generation and checkpoint records through log/slog.
package polyevo
