// Package logger builds the structured slog loggers used across the rivet service.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format constants
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds configuration options for the logger
type Config struct {
	Level       string
	Format      string
	Output      io.Writer
	DefaultTags map[string]interface{}
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:       "info",
		Format:      FormatText,
		Output:      os.Stderr,
		DefaultTags: map[string]interface{}{"service": "rivet"},
	}
}

// New creates a slog.Logger from the given configuration. Output defaults to
// stderr so stdout stays free for the MCP stdio transport.
func New(config *Config) *slog.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(config.Level)}
	var handler slog.Handler
	if strings.EqualFold(config.Format, FormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	l := slog.New(handler)
	for k, v := range config.DefaultTags {
		l = l.With(k, v)
	}
	return l
}

// ParseLevel converts a string level to a slog.Level. Unknown levels map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a child logger tagged with a component name
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", name)
}
