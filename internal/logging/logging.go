// Package logging provides JSON-lines structured logging for grepl.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
		Debug:  false,
	}
}

// New creates a new JSON-lines structured logger. Log format is:
//
//	{"ts":"2024-01-15T10:30:00Z","level":"info","msg":"search dispatched","scope":"global"}
//
// Log levels:
//   - debug: Verbose (enabled via GREPL_DEBUG=1)
//   - info: Dispatch, list swaps, substitutions
//   - warn: Non-fatal issues (skipped files, empty results)
//   - error: Failures requiring attention
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	// JSON handler with timestamp formatted as "ts"
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(output, opts)
	return slog.New(handler)
}

// ParseLevel maps a config level string to a slog level. Unknown strings
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch s {
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

// Open builds a logger from the level and file settings the config carries.
// An empty file logs to stderr; otherwise the file is opened for append and
// returned so the caller can close it.
func Open(level, file string) (*slog.Logger, io.Closer, error) {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	if os.Getenv("GREPL_DEBUG") == "1" {
		cfg.Debug = true
	}

	if file == "" {
		return New(cfg), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	cfg.Output = f
	return New(cfg), f, nil
}

// NewFromEnv creates a logger configured from environment variables.
// GREPL_DEBUG=1 enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if os.Getenv("GREPL_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// Discard returns a logger that drops everything. Useful where a logger is
// required but output is unwanted.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
