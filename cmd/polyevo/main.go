// Command polyevo approximates an image with semi-transparent polygons.
//
// Usage:
//
//	polyevo -target photo.jpg -out out -generations 20000
//
// Press Enter or send SIGINT/SIGTERM to stop after the current generation.
// The best genome is written to out/final_result.png.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gogpu/polyevo"
	"github.com/gogpu/polyevo/imagestore"
	"github.com/gogpu/polyevo/progress"
	"github.com/gogpu/polyevo/render"
	"github.com/gogpu/polyevo/tracker"
)

type flags struct {
	target        string
	out           string
	population    int
	polygons      int
	mutation      float64
	workers       int
	generations   int
	seed          uint64
	maxSize       int
	threshold     float64
	grace         time.Duration
	plot          string
	logLevel      string
	noCheckpoints bool
}

func main() {
	var f flags
	flag.StringVar(&f.target, "target", "", "target image (png, jpeg, gif, webp, bmp, tiff)")
	flag.StringVar(&f.out, "out", "output", "directory for checkpoints and the final image")
	flag.IntVar(&f.population, "population", 100, "population size")
	flag.IntVar(&f.polygons, "polygons", 50, "polygons per genome")
	flag.Float64Var(&f.mutation, "mutation", 0.1, "probability that an offspring is mutated")
	flag.IntVar(&f.workers, "workers", runtime.NumCPU(), "evaluation workers")
	flag.IntVar(&f.generations, "generations", 1_000_000, "maximum generations, 0 for no limit")
	flag.Uint64Var(&f.seed, "seed", 0, "random seed, 0 for time based")
	flag.IntVar(&f.maxSize, "max-size", 0, "downscale the target so no side exceeds this, 0 to keep")
	flag.Float64Var(&f.threshold, "threshold", tracker.DefaultThreshold, "fitness gain that counts as an improvement")
	flag.DurationVar(&f.grace, "grace", polyevo.DefaultShutdownGrace, "shutdown grace period")
	flag.StringVar(&f.plot, "plot", "", "write a fitness plot to this file (png, svg, pdf)")
	flag.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&f.noCheckpoints, "no-checkpoints", false, "do not save intermediate images")
	flag.Parse()

	if f.target == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(f); err != nil {
		log.Fatalf("polyevo: %v", err)
	}
}

func run(f flags) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("bad -log-level: %w", err)
	}
	polyevo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	store := imagestore.FileStore{}
	img, err := store.Load(f.target)
	if err != nil {
		return err
	}

	cfg := polyevo.DefaultConfig()
	cfg.PopulationSize = f.population
	cfg.NumPolygons = f.polygons
	cfg.MutationRate = f.mutation
	cfg.Parallelism = f.workers
	cfg.MaxGenerations = f.generations

	opts := []polyevo.Option{
		polyevo.WithStore(store),
		polyevo.WithImprovementThreshold(f.threshold),
		polyevo.WithShutdownGrace(f.grace),
		polyevo.WithMaxDimension(f.maxSize),
	}
	if f.seed != 0 {
		opts = append(opts, polyevo.WithSeed(f.seed))
	}
	if f.noCheckpoints {
		opts = append(opts, polyevo.WithoutCheckpoints())
	} else {
		opts = append(opts, polyevo.WithCheckpointDir(f.out))
	}

	eng, err := polyevo.New(img, cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		return err
	}
	go stopOnEnter(eng)
	fmt.Fprintln(os.Stderr, "evolving; press Enter to stop")

	res, runErr := eng.AwaitTermination()
	if res.Best == nil {
		return runErr
	}

	final := imagestore.FinalName(f.out)
	w, h := res.Best.Bounds()
	rendered, err := render.NewSoftware().Render(res.Best, w, h)
	if err != nil {
		return errors.Join(runErr, err)
	}
	if err := store.Save(rendered, final); err != nil {
		return errors.Join(runErr, err)
	}
	polyevo.Logger().Info("final image saved", "path", final, "fitness", res.BestFitness, "generations", res.Generations)

	if f.plot != "" {
		hist := progress.NewHistory()
		for _, st := range res.History {
			hist.Add(st)
		}
		if err := progress.SavePlot(hist, f.plot); err != nil {
			return errors.Join(runErr, err)
		}
		polyevo.Logger().Info("fitness plot saved", "path", f.plot)
	}
	return runErr
}

// stopOnEnter requests a stop when a line is read from stdin. EOF, as with a
// detached terminal, leaves the run alone.
func stopOnEnter(eng *polyevo.Engine) {
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err == nil {
		eng.RequestStop()
	}
}
