// Package metrics exposes Prometheus collectors for an evolution run.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "polyevo"

// Collector groups the run metrics. All methods are safe for concurrent use
// and a nil *Collector is a valid no-op.
type Collector struct {
	Generations        prometheus.Counter
	Evaluations        prometheus.Counter
	Improvements       prometheus.Counter
	BestFitness        prometheus.Gauge
	MeanFitness        prometheus.Gauge
	GenerationDuration prometheus.Histogram
	Checkpoints        *prometheus.CounterVec
}

// New builds the collectors and registers them with reg. A nil reg leaves
// them unregistered. Collectors already registered with reg (for example by
// a previous run in the same process) are reused.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Fully evaluated generations.",
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Fitness evaluations performed.",
		}),
		Improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "improvements_total",
			Help:      "Best-so-far snapshots installed.",
		}),
		BestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Fitness of the best individual found so far.",
		}),
		MeanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_mean_fitness",
			Help:      "Mean fitness of the last evaluated generation.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time spent per generation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		Checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoints_total",
			Help:      "Checkpoint save attempts by result.",
		}, []string{"result"}),
	}
	if reg == nil {
		return c, nil
	}

	var err error
	c.Generations = register(reg, c.Generations, &err)
	c.Evaluations = register(reg, c.Evaluations, &err)
	c.Improvements = register(reg, c.Improvements, &err)
	c.BestFitness = register(reg, c.BestFitness, &err)
	c.MeanFitness = register(reg, c.MeanFitness, &err)
	c.GenerationDuration = register(reg, c.GenerationDuration, &err)
	c.Checkpoints = register(reg, c.Checkpoints, &err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// register registers col, returning the existing collector when an
// identical one is already registered. The first failure is kept in *errp.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, errp *error) T {
	if *errp != nil {
		return col
	}
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		*errp = err
	}
	return col
}

// ObserveGeneration records one finished generation.
func (c *Collector) ObserveGeneration(evaluations int, mean, seconds float64) {
	if c == nil {
		return
	}
	c.Generations.Inc()
	c.Evaluations.Add(float64(evaluations))
	c.MeanFitness.Set(mean)
	c.GenerationDuration.Observe(seconds)
}

// ObserveImprovement records a new best fitness.
func (c *Collector) ObserveImprovement(fitness float64) {
	if c == nil {
		return
	}
	c.Improvements.Inc()
	c.BestFitness.Set(fitness)
}

// ObserveCheckpoint records the outcome of one checkpoint save.
func (c *Collector) ObserveCheckpoint(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Checkpoints.WithLabelValues(result).Inc()
}
