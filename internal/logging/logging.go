// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured logger shared by every component.
//
// The TUI owns the terminal, so logs are written to a file under
// ~/.taskmaster by default. JSON is the default format; "pretty" uses tint
// without color so the file stays readable.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Format is a log output format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Config holds logging configuration.
type Config struct {
	Level  string
	Format Format
	// Output takes precedence over File when set.
	Output io.Writer
	File   string
	// Color enables ANSI colors for the pretty format.
	Color     bool
	AddSource bool
}

// New creates a logger writing to cfg.Output (stderr when nil).
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level := ParseLevel(cfg.Level)
	var handler slog.Handler
	if cfg.Format == FormatPretty {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02 15:04:05.000",
			NoColor:    !cfg.Color,
			AddSource:  cfg.AddSource,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	}

	return slog.New(handler).With("service", "taskmaster")
}

// Open creates a logger writing to cfg.File (or cfg.Output). The returned
// closer releases the file and is never nil.
func Open(cfg Config) (*slog.Logger, io.Closer, error) {
	if cfg.Output != nil || cfg.File == "" {
		return New(cfg), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	cfg.Output = f
	return New(cfg), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Duration formats d for log attributes, rounded to the millisecond.
func Duration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// WithComponent tags every record with the owning component.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With("component", component)
}
