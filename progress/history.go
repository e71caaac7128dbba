// Package progress records per-generation fitness statistics and plots them.
package progress

import (
	"math"
	"sync"
	"time"

	"github.com/gogpu/polyevo/genome"
)

// GenerationStats summarizes one fully evaluated generation.
type GenerationStats struct {
	Generation int
	Best       float64
	Mean       float64
	Worst      float64
	Duration   time.Duration
}

// Summarize computes statistics over population. Unscored individuals are
// skipped. An empty or fully unscored population yields zero values.
func Summarize(generation int, population []*genome.Individual, d time.Duration) GenerationStats {
	st := GenerationStats{Generation: generation, Duration: d}
	best, worst := math.Inf(-1), math.Inf(1)
	var sum float64
	n := 0
	for _, ind := range population {
		if !ind.Scored() {
			continue
		}
		f := ind.Fitness()
		best = math.Max(best, f)
		worst = math.Min(worst, f)
		sum += f
		n++
	}
	if n == 0 {
		return st
	}
	st.Best, st.Worst, st.Mean = best, worst, sum/float64(n)
	return st
}

// History is an append-only, concurrency-safe list of generation stats.
type History struct {
	mu    sync.RWMutex
	stats []GenerationStats
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Add appends st.
func (h *History) Add(st GenerationStats) {
	h.mu.Lock()
	h.stats = append(h.stats, st)
	h.mu.Unlock()
}

// Len returns the number of recorded generations.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stats)
}

// Last returns the most recent stats, if any.
func (h *History) Last() (GenerationStats, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.stats) == 0 {
		return GenerationStats{}, false
	}
	return h.stats[len(h.stats)-1], true
}

// Stats returns a copy of all recorded stats in generation order.
func (h *History) Stats() []GenerationStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]GenerationStats(nil), h.stats...)
}
