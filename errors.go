package polyevo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("polyevo: invalid configuration")

	// ErrAlreadyStarted is returned by Start on an Engine that was started
	// before.
	ErrAlreadyStarted = errors.New("polyevo: engine already started")

	// ErrNotStarted is returned by AwaitTermination on an Engine that was
	// never started.
	ErrNotStarted = errors.New("polyevo: engine not started")
)

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("polyevo: invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
