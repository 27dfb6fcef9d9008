package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and tags every record with the component that emitted it.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	Writer    io.Writer
	JSON      bool
}

// DefaultConfig logs warnings and errors to stderr; stdout belongs to command output.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelWarn,
		Component: "shop",
		Writer:    os.Stderr,
	}
}

func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	component := cfg.Component
	if component == "" {
		component = "shop"
	}
	base := slog.New(h)
	return &Logger{Logger: base.With("component", component), base: base, component: component}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Config{Writer: io.Discard, Level: slog.LevelError + 1})
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.base.With("component", component), base: l.base, component: component}
}

// With adds attributes that survive a later WithComponent.
func (l *Logger) With(args ...any) *Logger {
	base := l.base.With(args...)
	return &Logger{Logger: base.With("component", l.component), base: base, component: l.component}
}

func (l *Logger) Component() string { return l.component }

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}
