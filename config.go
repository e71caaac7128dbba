package polyevo

import (
	"fmt"

	"github.com/gogpu/polyevo/selection"
)

// EliteFraction is the share of each generation copied unchanged into the
// next one, rounded down.
const EliteFraction = 0.1

// Config holds the evolution parameters.
type Config struct {
	// PopulationSize is the number of individuals per generation. It must be
	// at least TournamentSize.
	PopulationSize int

	// NumPolygons is the number of polygons in every genome.
	NumPolygons int

	// MutationRate is the probability in [0, 1] that an offspring is
	// considered for mutation at all. Each of its genes then mutates with
	// genome.GeneMutationProbability.
	MutationRate float64

	// TournamentSize is the number of contestants per parent selection.
	TournamentSize int

	// Parallelism is the number of evaluation workers. Zero means
	// runtime.GOMAXPROCS(0).
	Parallelism int

	// MaxGenerations bounds the run. Zero means unbounded.
	MaxGenerations int
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		NumPolygons:    50,
		MutationRate:   0.1,
		TournamentSize: selection.DefaultTournamentSize,
		Parallelism:    0,
		MaxGenerations: 1_000_000,
	}
}

// Validate checks c and returns a *ConfigError for the first bad field.
func (c Config) Validate() error {
	switch {
	case c.NumPolygons <= 0:
		return &ConfigError{Field: "NumPolygons", Reason: fmt.Sprintf("must be positive, got %d", c.NumPolygons)}
	case c.TournamentSize <= 0:
		return &ConfigError{Field: "TournamentSize", Reason: fmt.Sprintf("must be positive, got %d", c.TournamentSize)}
	case c.PopulationSize < c.TournamentSize:
		return &ConfigError{
			Field:  "PopulationSize",
			Reason: fmt.Sprintf("%d is smaller than tournament size %d", c.PopulationSize, c.TournamentSize),
		}
	case !(c.MutationRate >= 0 && c.MutationRate <= 1):
		return &ConfigError{Field: "MutationRate", Reason: fmt.Sprintf("must be in [0, 1], got %v", c.MutationRate)}
	case c.Parallelism < 0:
		return &ConfigError{Field: "Parallelism", Reason: fmt.Sprintf("must not be negative, got %d", c.Parallelism)}
	case c.MaxGenerations < 0:
		return &ConfigError{Field: "MaxGenerations", Reason: fmt.Sprintf("must not be negative, got %d", c.MaxGenerations)}
	}
	return nil
}

func (c Config) eliteCount() int {
	return int(float64(c.PopulationSize) * EliteFraction)
}
