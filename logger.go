package polyevo

import (
	"log/slog"

	"github.com/gogpu/polyevo/internal/logging"
)

// SetLogger configures the logger for polyevo and all its sub-packages.
// By default, polyevo produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by polyevo:
//   - [slog.LevelDebug]: per-generation variation details
//   - [slog.LevelInfo]: lifecycle events, generation summaries, new best fitness
//   - [slog.LevelWarn]: failed checkpoint saves, forced shutdown
//   - [slog.LevelError]: render failures that end a run
//
// Example:
//
//	polyevo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by polyevo.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
