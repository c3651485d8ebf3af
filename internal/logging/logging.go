// Package logging builds the structured logger shared by the server and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"productapprovals/internal/config"
)

// New returns a logger writing to stdout.
func New(cfg config.LogConfig) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

// NewWithWriter returns a logger writing to w. JSON output keeps stack-like
// multi-line values (remote response bodies) inside a single record.
func NewWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: true,
	}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Named returns a child logger tagged with a component name.
func Named(l *slog.Logger, name string) *slog.Logger {
	return l.With("logger", name)
}

// ParseLevel maps a level name to a slog level, defaulting to debug.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
