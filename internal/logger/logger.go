// Package logger builds the structured slog loggers used by the text summarizer.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelDisabled suppresses every record.
const LevelDisabled = slog.LevelError + 8

// Format defines how log records are rendered.
type Format string

// Log format constants
const (
	TEXT Format = "text"
	JSON Format = "json"
)

// Config holds configuration options for the logger
type Config struct {
	Level       string
	Format      Format
	Output      io.Writer
	AddSource   bool
	NoColor     bool
	DefaultTags map[string]any
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:       "info",
		Format:      TEXT,
		Output:      os.Stderr,
		DefaultTags: map[string]any{"service": "textsummarizer"},
	}
}

// New creates a new logger with the given configuration. Text output is
// rendered by tint; JSON output by slog's JSON handler.
func New(config *Config) *slog.Logger {
	if config == nil {
		config = DefaultConfig()
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(config.Level)

	var handler slog.Handler
	switch ParseFormat(string(config.Format)) {
	case JSON:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     level,
			AddSource: config.AddSource,
		})
	default:
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  config.AddSource,
			NoColor:    config.NoColor,
		})
	}

	logger := slog.New(handler)
	for k, v := range config.DefaultTags {
		logger = logger.With(k, v)
	}
	return logger
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "disabled", "off":
		return LevelDisabled
	default:
		return slog.LevelInfo
	}
}

// ParseFormat converts a format name to a Format. Unknown names map to text.
func ParseFormat(format string) Format {
	if strings.EqualFold(strings.TrimSpace(format), string(JSON)) {
		return JSON
	}
	return TEXT
}

// Init builds a logger from config and installs it as the slog default.
func Init(config *Config) *slog.Logger {
	logger := New(config)
	slog.SetDefault(logger)
	return logger
}

// Component returns the default logger tagged with a component name.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
