package polyevo

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gogpu/polyevo/fitness"
	"github.com/gogpu/polyevo/genome"
	"github.com/gogpu/polyevo/imagestore"
	"github.com/gogpu/polyevo/internal/logging"
	"github.com/gogpu/polyevo/internal/parallel"
	"github.com/gogpu/polyevo/progress"
	"github.com/gogpu/polyevo/render"
	"github.com/gogpu/polyevo/selection"
	"github.com/gogpu/polyevo/tracker"
	"github.com/gogpu/polyevo/variation"
)

// Result is the outcome of a terminated run.
type Result struct {
	// Best is a copy of the best individual ever scored, nil if no
	// generation completed.
	Best        *genome.Individual
	BestFitness float64

	// Generations is the number of fully scored generations.
	Generations int

	// Population is the last population, sorted by descending fitness.
	// After a clean stop every member is scored.
	Population []*genome.Individual

	History []progress.GenerationStats
}

// Engine runs the evolution loop on its own goroutine.
//
// Thread safety: all methods are safe for concurrent use. The population
// itself is owned by the loop goroutine and only handed out through Result.
type Engine struct {
	cfg       Config
	opts      options
	evaluator *fitness.Evaluator
	selector  *selection.Tournament
	best      *tracker.Best
	history   *progress.History

	// Set by Start before the loop goroutine exists.
	pool  *parallel.WorkerPool
	saver *imagestore.Saver

	state      atomic.Int32
	generation atomic.Int64
	started    atomic.Bool
	stop       atomic.Bool

	done   chan struct{}
	result Result
	err    error
}

// New validates cfg, prepares target and returns an Engine ready to Start.
// The target is flattened over white and, with WithMaxDimension, downscaled.
// Configuration problems are returned as *ConfigError before any goroutine
// starts.
func New(target image.Image, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &ConfigError{Field: "target", Reason: "image is nil"}
	}
	if b := target.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ConfigError{Field: "target", Reason: fmt.Sprintf("dimensions %dx%d", b.Dx(), b.Dy())}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDimension < 0 {
		return nil, &ConfigError{Field: "MaxDimension", Reason: fmt.Sprintf("must not be negative, got %d", o.maxDimension)}
	}
	if o.renderer == nil {
		o.renderer = render.NewSoftware()
	}
	if o.store == nil {
		o.store = imagestore.FileStore{}
	}

	ev, err := fitness.NewEvaluator(imagestore.PrepareTarget(target, o.maxDimension), o.renderer)
	if err != nil {
		return nil, fmt.Errorf("polyevo: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		opts:      o,
		evaluator: ev,
		selector:  selection.NewTournament(cfg.TournamentSize),
		history:   progress.NewHistory(),
		done:      make(chan struct{}),
	}
	e.best = tracker.New(
		tracker.WithThreshold(o.threshold),
		tracker.WithOnImprove(e.onImprove),
	)
	return e, nil
}

// Run creates an Engine, starts it and waits for it to terminate.
// Cancelling ctx stops the run at the next generation boundary.
func Run(ctx context.Context, target image.Image, cfg Config, opts ...Option) (Result, error) {
	e, err := New(target, cfg, opts...)
	if err != nil {
		return Result{}, err
	}
	if err := e.Start(ctx); err != nil {
		return Result{}, err
	}
	return e.AwaitTermination()
}

// Start builds the initial random population, starts the worker pool and
// checkpoint saver, and launches the loop. Cancelling ctx has the same
// effect as RequestStop. Start returns ErrAlreadyStarted on a second call.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	rng := genome.NewRand(e.opts.seed)
	w, h := e.evaluator.Size()
	population := make([]*genome.Individual, e.cfg.PopulationSize)
	for i := range population {
		population[i] = genome.NewRandom(rng, e.cfg.NumPolygons, w, h)
	}

	e.pool = parallel.NewWorkerPool(e.cfg.Parallelism)
	if e.opts.checkpoints {
		e.saver = imagestore.NewSaver(e.opts.store, e.opts.renderer,
			imagestore.WithResultHook(func(_ imagestore.Job, err error) {
				e.opts.metrics.ObserveCheckpoint(err)
			}))
	}

	logging.Logger().Info("evolution starting",
		"population", e.cfg.PopulationSize,
		"polygons", e.cfg.NumPolygons,
		"mutation_rate", e.cfg.MutationRate,
		"workers", e.pool.Workers(),
		"width", w, "height", h,
		"seed", e.opts.seed)

	go e.run(ctx, rng, population)
	return nil
}

// RequestStop asks the loop to finish after the generation in progress has
// been scored. It is idempotent and never blocks.
func (e *Engine) RequestStop() {
	if e.stop.CompareAndSwap(false, true) {
		logging.Logger().Info("stop requested", "generation", e.Generation())
	}
}

// AwaitTermination blocks until the Engine is Terminated. The error is
// non-nil when a render failure ended the run; it wraps *fitness.RenderError.
func (e *Engine) AwaitTermination() (Result, error) {
	if !e.started.Load() {
		return Result{}, ErrNotStarted
	}
	<-e.done
	return e.result, e.err
}

// Done is closed once the Engine is Terminated.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// CurrentBest returns a copy of the best individual found so far.
func (e *Engine) CurrentBest() (*genome.Individual, bool) {
	return e.best.Current()
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Generation returns the generation being evaluated, starting at 1, or 0
// before the first one.
func (e *Engine) Generation() int {
	return int(e.generation.Load())
}

// Target returns the prepared target the population is scored against.
// Callers must treat it as read-only.
func (e *Engine) Target() *image.RGBA {
	return e.evaluator.Target()
}

// Checkpoints returns the number of saved and failed checkpoint images.
func (e *Engine) Checkpoints() (saved, failed int64) {
	if e.saver == nil {
		return 0, 0
	}
	return e.saver.Saved(), e.saver.Failures()
}

func (e *Engine) run(ctx context.Context, rng *rand.Rand, population []*genome.Individual) {
	defer close(e.done)

	e.state.Store(int32(StateRunning))
	population, generations, err := e.evolve(ctx, rng, population)

	e.state.Store(int32(StateStopping))
	e.shutdown()

	res := Result{
		Population:  population,
		Generations: generations,
		History:     e.history.Stats(),
	}
	if snap, ok := e.best.Snapshot(); ok {
		res.Best = snap.Individual()
		res.BestFitness = snap.Fitness
	}
	e.result, e.err = res, err
	e.state.Store(int32(StateTerminated))

	logging.Logger().Info("evolution terminated",
		"generations", generations,
		"best_fitness", res.BestFitness,
		"improvements", e.best.Improvements())
}

// evolve runs generations until a stop condition holds at a generation
// boundary. The returned population is the last fully scored one unless err
// is set.
func (e *Engine) evolve(ctx context.Context, rng *rand.Rand, population []*genome.Individual) ([]*genome.Individual, int, error) {
	completed := 0
	for gen := 1; ; gen++ {
		e.generation.Store(int64(gen))
		start := time.Now()

		evaluated, err := e.evaluate(gen, population)
		if err != nil {
			logging.Logger().Error("evaluation failed", "generation", gen, "err", err)
			return population, completed, fmt.Errorf("polyevo: generation %d: %w", gen, err)
		}
		slices.SortStableFunc(population, func(a, b *genome.Individual) int {
			return cmp.Compare(b.Fitness(), a.Fitness())
		})
		completed = gen
		e.record(progress.Summarize(gen, population, time.Since(start)), evaluated)

		if e.stop.Load() || ctx.Err() != nil {
			return population, completed, nil
		}
		if e.cfg.MaxGenerations != 0 && gen >= e.cfg.MaxGenerations {
			return population, completed, nil
		}

		next, err := e.breed(rng, population)
		if err != nil {
			return population, completed, err
		}
		population = next
	}
}

// evaluate scores every unscored individual on the pool and reports each to
// the tracker. It returns after all tasks have finished.
func (e *Engine) evaluate(gen int, population []*genome.Individual) (int, error) {
	tasks := make([]parallel.Task, 0, len(population))
	for _, ind := range population {
		if ind.Scored() {
			continue
		}
		tasks = append(tasks, func(context.Context) error {
			if _, err := e.evaluator.Evaluate(ind); err != nil {
				return err
			}
			e.best.Report(ind, gen)
			return nil
		})
	}
	return len(tasks), e.pool.ExecuteAll(tasks)
}

// breed builds the next generation from a scored population sorted by
// descending fitness.
func (e *Engine) breed(rng *rand.Rand, population []*genome.Individual) ([]*genome.Individual, error) {
	size := e.cfg.PopulationSize
	elites := e.cfg.eliteCount()

	next := make([]*genome.Individual, 0, size)
	for _, ind := range population[:elites] {
		next = append(next, ind.Clone())
	}

	mutated := 0
	for len(next) < size {
		p1 := e.selector.Select(rng, population)
		p2 := e.selector.Select(rng, population)
		o1, o2, err := variation.Crossover(rng, p1, p2)
		if err != nil {
			return nil, fmt.Errorf("polyevo: %w", err)
		}
		// The second child is still mutated when it will not fit, which
		// keeps the random stream independent of the population size.
		for _, child := range [...]*genome.Individual{o1, o2} {
			if variation.MaybeMutate(rng, child, e.cfg.MutationRate) {
				mutated++
			}
			if len(next) < size {
				next = append(next, child)
			}
		}
	}

	if logging.Enabled(slog.LevelDebug) {
		logging.Logger().Debug("next generation bred", "elites", elites, "mutated", mutated)
	}
	return next, nil
}

func (e *Engine) record(st progress.GenerationStats, evaluated int) {
	e.history.Add(st)
	e.opts.metrics.ObserveGeneration(evaluated, st.Mean, st.Duration.Seconds())
	logging.Logger().Info("generation complete",
		"generation", st.Generation,
		"best", st.Best,
		"mean", st.Mean,
		"worst", st.Worst,
		"evaluated", evaluated,
		"duration", st.Duration)
	if e.opts.onGeneration != nil {
		e.opts.onGeneration(st)
	}
}

// onImprove runs on a worker goroutine for every new best snapshot.
func (e *Engine) onImprove(s tracker.Snapshot) {
	e.opts.metrics.ObserveImprovement(s.Fitness)
	if e.saver == nil {
		return
	}
	path := imagestore.CheckpointName(e.opts.checkpointDir, s.Generation, s.Captured)
	if err := e.saver.Enqueue(imagestore.Job{Individual: s.Individual(), Path: path}); err != nil {
		logging.Logger().Warn("checkpoint dropped", "path", path, "err", err)
	}
}

// shutdown drains the pool and the saver, each within the grace period.
func (e *Engine) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.grace)
	defer cancel()
	if err := e.pool.Shutdown(ctx); err != nil {
		logging.Logger().Warn("worker pool forced to stop", "err", err)
	}

	if e.saver == nil {
		return
	}
	ctx, cancel = context.WithTimeout(context.Background(), e.opts.grace)
	defer cancel()
	// Close logs a forced stop itself.
	_ = e.saver.Close(ctx)
}
