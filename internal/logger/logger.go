// Package logger sets up structured logging with log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rustyeddy/tfcandle/config"
)

const service = "tfcandle"

// New returns a logger writing to w in the configured format and level.
func New(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", service))
}

// Init creates a logger on stderr and installs it as the slog default.
func Init(cfg config.Log) *slog.Logger {
	l := New(cfg, os.Stderr)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
