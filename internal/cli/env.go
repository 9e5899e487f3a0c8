// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/config"
	"github.com/jeranaias/taskmaster-tui/internal/logging"
	"github.com/jeranaias/taskmaster-tui/internal/storage"
)

// StateFile is the SQLite database kept next to the config file.
const StateFile = "state.db"

// env is everything a command needs, opened from the config file.
type env struct {
	io      IO
	prefs   *config.Store
	logger  *slog.Logger
	db      *storage.Store
	client  *auth.Client
	session *auth.Session

	closers []io.Closer
}

func openEnv(g *globals, streams IO) (*env, error) {
	path, err := config.Path(g.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := openLogger(g, cfg)
	if err != nil {
		return nil, err
	}

	e := &env{
		io:      streams,
		prefs:   config.NewStore(path, cfg, logger),
		logger:  logger,
		closers: []io.Closer{logCloser},
	}

	e.db, err = storage.Open(filepath.Join(filepath.Dir(path), StateFile))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, e.db)

	e.client, err = auth.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSecs)*time.Second)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("api.base_url: %w", err)
	}

	e.session = auth.NewSession(auth.SessionOptions{
		API:          e.client,
		Store:        e.db,
		StaySignedIn: func() bool { return e.prefs.Preferences().StaySignedIn },
		Logger:       logger,
	})

	logger.Debug("environment ready", "config", path, "api", e.client.BaseURL())
	return e, nil
}

// openLogger writes to the configured log file. Flags win over the file.
func openLogger(g *globals, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	format := cfg.Logging.Format
	if g.logFormat != "" {
		format = g.logFormat
	}
	file, err := cfg.LogFile()
	if err != nil {
		return nil, nil, err
	}
	return logging.Open(logging.Config{
		Level:  level,
		Format: logging.Format(format),
		File:   file,
	})
}

// Close releases the database and the log file.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
