// Package log wraps slog with component-scoped loggers shared by the web
// process and the sync worker.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger carries a component attribute on every record.
type Logger struct {
	*slog.Logger
	component string
}

// New creates a component logger writing text records to stdout at the
// given level.
func New(component string, level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger:    slog.New(handler).With("component", component),
		component: component,
	}
}

// NewFromEnv builds a logger whose level comes from LOG_LEVEL
// (debug|info|warn|error, default info).
func NewFromEnv(component string) *Logger {
	return New(component, LevelFromEnv())
}

func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger scoped to a sub-component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

func (l *Logger) Component() string { return l.component }

// SetDefault installs the logger as the process-wide slog default so
// library code logging through slog carries the same handler.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
