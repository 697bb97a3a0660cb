// Package logging builds the slog loggers used by the scrollmon commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Config selects the level and destination of a logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// File, if set, receives JSON records through a RotatingFileWriter.
	// Otherwise records are written as text to Fallback.
	File string
	// MaxSizeMB and MaxFiles configure rotation of File.
	MaxSizeMB int
	MaxFiles  int
	// Fallback receives text records when File is empty. A nil Fallback
	// discards them.
	Fallback io.Writer
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
}

// New builds a logger from cfg. The returned closer releases the log file
// and is never nil.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.File != "" {
		w, err := NewRotatingFileWriter(cfg.File, cfg.MaxSizeMB, cfg.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		return slog.New(slog.NewJSONHandler(w, opts)), w, nil
	}

	if cfg.Fallback == nil {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}
	return slog.New(slog.NewTextHandler(cfg.Fallback, opts)), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
