package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds the logging settings read from the application configuration.
type Config struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string `mapstructure:"level"`
	// AddSource includes the caller's file and line in each record.
	AddSource bool `mapstructure:"add_source"`
}

// ParseLevel converts a textual log level into a slog.Level.
// Matching is case-insensitive; an empty string yields slog.LevelInfo.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a JSON logger writing to out. When running under CI the handler
// is wrapped so every record carries the CI run metadata.
func New(out io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if isInCIEnvironment() {
		handler = NewCIHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), nil
}

// Setup creates the application logger on stdout and installs it as the
// slog default, so package-level slog calls share the same handler.
//
// An invalid level is reported once on stderr and replaced by info; logging
// should never be the reason the process fails to start.
func Setup(cfg Config) (*slog.Logger, error) {
	if _, err := ParseLevel(cfg.Level); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
		cfg.Level = "info"
	}

	logger, err := New(os.Stdout, cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return logger, nil
}
