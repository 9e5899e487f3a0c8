// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultThrottleInterval bounds how often activity may reset the idle timer.
const DefaultThrottleInterval = time.Second

// Throttle admits at most one event per interval. The first event after a
// quiet period is admitted immediately; later events inside the same window
// are dropped, not delayed.
type Throttle struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewThrottle creates a leading-edge throttle. A non-positive interval admits
// every event.
func NewThrottle(interval time.Duration) *Throttle {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttle{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Allow reports whether an event observed at now should be acted on.
func (t *Throttle) Allow(now time.Time) bool {
	return t.limiter.AllowN(now, 1)
}

// Interval returns the throttle window.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}
