package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps debug|info|warn|error (case-insensitive) to a slog level.
// Anything else is treated as info.
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

// LevelFromEnv reads LOG_LEVEL, falling back to fallback when it is unset.
func LevelFromEnv(fallback string) slog.Level {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		return ParseLevel(v)
	}
	return ParseLevel(fallback)
}

// NewTintLogger builds a colored slog logger writing to w and installs it as
// the process default.
func NewTintLogger(w io.Writer, level slog.Level) *slog.Logger {
	l := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(l)
	return l
}

// Setup returns a Logger writing colored output to stderr.
func Setup(level slog.Level) Logger {
	return NewSlogLogger(NewTintLogger(os.Stderr, level))
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
