package polyevo

import (
	"time"

	"github.com/gogpu/polyevo/imagestore"
	"github.com/gogpu/polyevo/metrics"
	"github.com/gogpu/polyevo/progress"
	"github.com/gogpu/polyevo/render"
	"github.com/gogpu/polyevo/tracker"
)

// DefaultShutdownGrace bounds how long termination waits for the worker pool
// and for pending checkpoint saves, each.
const DefaultShutdownGrace = 60 * time.Second

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := polyevo.New(img, polyevo.DefaultConfig(),
//	    polyevo.WithSeed(7),
//	    polyevo.WithCheckpointDir("out"),
//	    polyevo.WithMaxDimension(256),
//	)
type Option func(*options)

// options holds optional configuration for Engine creation.
type options struct {
	seed          uint64
	renderer      render.Renderer
	store         imagestore.Store
	checkpointDir string
	checkpoints   bool
	threshold     float64
	grace         time.Duration
	maxDimension  int
	metrics       *metrics.Collector
	onGeneration  func(progress.GenerationStats)
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		seed:          uint64(time.Now().UnixNano()),
		checkpointDir: ".",
		checkpoints:   true,
		threshold:     tracker.DefaultThreshold,
		grace:         DefaultShutdownGrace,
	}
}

// WithSeed fixes the random seed, making a run reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRenderer replaces the default gg-based software renderer. The renderer
// is used both for scoring and for checkpoint images and must be safe for
// concurrent use.
func WithRenderer(r render.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithStore sets where checkpoint images are written.
func WithStore(s imagestore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithCheckpointDir sets the checkpoint directory. It is created on the
// first save.
func WithCheckpointDir(dir string) Option {
	return func(o *options) {
		o.checkpointDir = dir
		o.checkpoints = true
	}
}

// WithoutCheckpoints disables checkpoint saving.
func WithoutCheckpoints() Option {
	return func(o *options) {
		o.checkpoints = false
	}
}

// WithImprovementThreshold sets the minimum fitness gain that counts as a
// new best and triggers a checkpoint.
func WithImprovementThreshold(th float64) Option {
	return func(o *options) {
		o.threshold = th
	}
}

// WithShutdownGrace sets how long termination waits for in-flight work
// before cancelling it.
func WithShutdownGrace(d time.Duration) Option {
	return func(o *options) {
		o.grace = d
	}
}

// WithMaxDimension downscales the target so neither side exceeds px before
// evolution starts. Zero keeps the original size.
func WithMaxDimension(px int) Option {
	return func(o *options) {
		o.maxDimension = px
	}
}

// WithMetrics reports run statistics to c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithOnGeneration registers fn to be called on the evolution goroutine
// after each generation has been scored. fn must not block.
func WithOnGeneration(fn func(progress.GenerationStats)) Option {
	return func(o *options) {
		o.onGeneration = fn
	}
}
