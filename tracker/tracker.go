// Package tracker keeps the best individual found during a run.
//
// The tracker holds an immutable [Snapshot] behind an atomic pointer. Reports
// from concurrent evaluation workers race through a compare-and-set loop, so
// no improvement is lost and readers never block.
package tracker

import (
	"sync/atomic"
	"time"

	"github.com/gogpu/polyevo/genome"
	"github.com/gogpu/polyevo/internal/logging"
)

// DefaultThreshold is the minimum fitness gain that replaces the incumbent.
const DefaultThreshold = 1e-4

// Snapshot is an immutable record of the best individual at capture time.
type Snapshot struct {
	individual *genome.Individual

	// Fitness is the fitness the snapshot was captured at. Every installed
	// snapshot is checkpointed, so this is also the fitness of the last
	// checkpoint request.
	Fitness float64

	// Generation is the generation during which the individual was scored.
	Generation int

	// Captured is the wall-clock capture time.
	Captured time.Time
}

// Individual returns a deep copy of the captured individual.
func (s *Snapshot) Individual() *genome.Individual {
	return s.individual.Clone()
}

// Best is a lock-free best-so-far tracker. The zero value is not usable;
// call New.
type Best struct {
	current      atomic.Pointer[Snapshot]
	threshold    float64
	onImprove    func(Snapshot)
	improvements atomic.Int64
	now          func() time.Time
}

// Option configures a Best tracker.
type Option func(*Best)

// WithThreshold sets the improvement threshold. Negative values are treated
// as zero.
func WithThreshold(th float64) Option {
	return func(b *Best) {
		if th < 0 {
			th = 0
		}
		b.threshold = th
	}
}

// WithOnImprove registers fn to be called after each installed snapshot.
// fn runs on the reporting goroutine and must not block; hand long work
// (such as saving a checkpoint image) to another goroutine.
func WithOnImprove(fn func(Snapshot)) Option {
	return func(b *Best) {
		b.onImprove = fn
	}
}

// withClock overrides time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(b *Best) {
		b.now = now
	}
}

// New creates an empty tracker.
func New(opts ...Option) *Best {
	b := &Best{threshold: DefaultThreshold, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Report offers ind as a candidate scored during generation. It installs a
// deep copy when there is no incumbent or ind beats it by more than the
// threshold, and reports whether it did. Unscored individuals are ignored.
//
// Report is safe for concurrent use. The caller must not mutate ind during
// the call.
func (b *Best) Report(ind *genome.Individual, generation int) bool {
	if ind == nil || !ind.Scored() {
		return false
	}
	f := ind.Fitness()

	var next *Snapshot
	for {
		cur := b.current.Load()
		if cur != nil && !(f > cur.Fitness+b.threshold) {
			return false
		}
		if next == nil {
			next = &Snapshot{
				individual: ind.Clone(),
				Fitness:    f,
				Generation: generation,
				Captured:   b.now(),
			}
		}
		if b.current.CompareAndSwap(cur, next) {
			break
		}
	}

	b.improvements.Add(1)
	logging.Logger().Info("new best fitness", "fitness", f, "generation", generation)
	if b.onImprove != nil {
		b.onImprove(*next)
	}
	return true
}

// Snapshot returns the current snapshot, if any.
func (b *Best) Snapshot() (Snapshot, bool) {
	cur := b.current.Load()
	if cur == nil {
		return Snapshot{}, false
	}
	return *cur, true
}

// Current returns a deep copy of the best individual, if any.
func (b *Best) Current() (*genome.Individual, bool) {
	cur := b.current.Load()
	if cur == nil {
		return nil, false
	}
	return cur.Individual(), true
}

// Fitness returns the best fitness, if any.
func (b *Best) Fitness() (float64, bool) {
	cur := b.current.Load()
	if cur == nil {
		return 0, false
	}
	return cur.Fitness, true
}

// Improvements returns how many snapshots have been installed.
func (b *Best) Improvements() int64 {
	return b.improvements.Load()
}

// Threshold returns the configured improvement threshold.
func (b *Best) Threshold() float64 {
	return b.threshold
}
