package phy

import (
	"log/slog"
	"os"

	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

// Logger wraps slog.Logger with session-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogOpen logs a dataset open.
func (l *Logger) LogOpen(numSpikes, numClusters int) {
	l.Info("dataset opened",
		"spikes", numSpikes,
		"clusters", numClusters,
	)
}

// LogUpdate logs the outcome of a mutating operation.
func (l *Logger) LogUpdate(up model.UpdateDescriptor) {
	if up.Kind == model.UpdateMove {
		l.Info("clusters moved",
			"clusters", len(up.Moved),
			"group", string(up.Group),
		)
		return
	}
	l.Info("clustering changed",
		"kind", string(up.Kind),
		"removed", up.Removed,
		"added", up.Added,
	)
}

// LogSelect logs a selection change.
func (l *Logger) LogSelect(clusters []core.ClusterID) {
	l.Debug("selection changed", "clusters", clusters)
}
