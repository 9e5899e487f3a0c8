// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus collectors for the inactivity tracker.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
)

var (
	TrackerPhase = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "taskmaster_tracker_phase",
		Help: "1 if the inactivity tracker is in the given phase",
	}, []string{"phase"})

	ActivityResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskmaster_activity_resets_total",
		Help: "Idle timer resets caused by user activity or stay-logged-in",
	})

	WarningsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskmaster_warnings_total",
		Help: "Inactivity warnings shown",
	})

	LogoutsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmaster_logouts_total",
		Help: "Logouts by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(
		TrackerPhase,
		ActivityResetsTotal,
		WarningsTotal,
		LogoutsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

var allPhases = []activity.Phase{
	activity.PhaseDormant,
	activity.PhaseIdle,
	activity.PhaseWarning,
	activity.PhaseExpired,
}

func setPhase(phase activity.Phase) {
	for _, p := range allPhases {
		v := float64(0)
		if p == phase {
			v = 1
		}
		TrackerPhase.WithLabelValues(p.String()).Set(v)
	}
}

// Observer feeds tracker transitions into the collectors. It implements
// activity.Observer.
type Observer struct{}

// Transition implements activity.Observer.
func (Observer) Transition(from, to activity.Phase, trigger activity.Trigger) {
	setPhase(to)

	switch {
	case to == activity.PhaseIdle && from != activity.PhaseDormant:
		ActivityResetsTotal.Inc()
	case to == activity.PhaseWarning:
		WarningsTotal.Inc()
	case to == activity.PhaseExpired:
		LogoutsTotal.WithLabelValues(LogoutReason(trigger)).Inc()
	}
}

// RecordManualLogout counts a logout the user asked for.
func RecordManualLogout() {
	LogoutsTotal.WithLabelValues("manual").Inc()
}

// LogoutReason maps an expiring trigger to the reason label.
func LogoutReason(trigger activity.Trigger) string {
	switch trigger {
	case activity.TriggerLogoutTimeout:
		return "inactivity"
	case activity.TriggerForceLogout:
		return "warning_dismissed"
	default:
		return string(trigger)
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
