// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/config"
	"github.com/jeranaias/taskmaster-tui/internal/logging"
	"github.com/jeranaias/taskmaster-tui/internal/metrics"
	"github.com/jeranaias/taskmaster-tui/internal/session"
	"github.com/jeranaias/taskmaster-tui/internal/todo"
	"github.com/jeranaias/taskmaster-tui/internal/ui/app"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

// runTUI wires the tracker, the controller and the UI together and blocks
// until the user quits or a signal arrives.
func runTUI(ctx context.Context, e *env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := e.prefs.Get()
	timeout := time.Duration(cfg.API.TimeoutSecs) * time.Second

	restoreCtx, cancel := context.WithTimeout(ctx, timeout)
	user, err := e.session.Restore(restoreCtx)
	cancel()
	switch {
	case err == nil:
		e.logger.Info("resuming session", "user", user.Username)
	case errors.Is(err, auth.ErrNotAuthenticated):
	case errors.Is(err, auth.ErrSessionExpired):
		fmt.Fprintln(e.io.Err, styles.RenderWarning("Stored session expired, please sign in again"))
	default:
		e.logger.Warn("could not restore session", "error", err)
	}

	if err := e.prefs.Watch(ctx, config.DefaultWatchDebounce); err != nil {
		e.logger.Warn("config file will not be watched", "error", err)
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Listen, logging.WithComponent(e.logger, "metrics")); err != nil {
				e.logger.Error("metrics listener failed", "addr", cfg.Metrics.Listen, "error", err)
			}
		}()
	}

	bus := activity.NewBus()
	defer bus.Close()

	notifier := app.NewNotifier(logging.WithComponent(e.logger, "ui"))
	ctrl, err := session.New(session.Options{
		Auth:     e.session,
		Prefs:    e.prefs,
		Events:   bus,
		Notifier: notifier,
		Recorder: e.db,
		Observer: metrics.Observer{},
		Logger:   e.logger,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		return err
	}
	defer func() {
		ctrl.Close()
		ctrl.Wait()
	}()

	model := app.New(app.Options{
		Auth:           e.session,
		Todos:          todo.NewClient(e.client, e.session),
		Lifecycle:      ctrl,
		Prefs:          e.prefs,
		Events:         bus,
		Theme:          styles.NewTheme(),
		Logger:         logging.WithComponent(e.logger, "ui"),
		RequestTimeout: timeout,
	})
	return app.Run(ctx, model, notifier)
}
