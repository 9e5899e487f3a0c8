// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
	"github.com/jeranaias/taskmaster-tui/internal/util"
)

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current auto-logout status.
type Status struct {
	Authenticated bool
	Username      string
	TrackerID     string
	Phase         activity.Phase
	Config        activity.Config
	// IdleTime is time since the last counted activity. Zero when dormant.
	IdleTime time.Duration
	// Remaining is time until the warning (Idle) or the logout (Warning).
	Remaining time.Duration
}

// Active reports whether a Tracker is counting down.
func (s Status) Active() bool {
	return s.Phase == activity.PhaseIdle || s.Phase == activity.PhaseWarning
}

// Summary is the one-line form used by the status bar and `status`.
func (s Status) Summary() string {
	switch {
	case !s.Authenticated:
		return "signed out"
	case s.Phase == activity.PhaseIdle:
		return "auto-logout: warning in " + FormatDuration(s.Remaining)
	case s.Phase == activity.PhaseWarning:
		return "auto-logout: logout in " + FormatDuration(s.Remaining)
	case s.Phase == activity.PhaseExpired:
		return "auto-logout: logging out"
	default:
		return "auto-logout: off"
	}
}

// Status returns the current status.
func (c *Controller) Status() Status {
	st := Status{
		Authenticated: c.opts.Auth.IsAuthenticated(),
		Phase:         activity.PhaseDormant,
		Config:        c.opts.Prefs.ActivityConfig(),
	}
	if user, ok := c.opts.Auth.User(); ok {
		st.Username = user.Username
	}

	b := c.binding()
	if b == nil {
		return st
	}
	ts := b.tracker.Status()
	st.TrackerID = ts.ID
	st.Phase = ts.Phase
	st.Config = b.config
	st.Remaining = ts.Remaining
	if st.Active() && !ts.LastActivity.IsZero() {
		st.IdleTime = c.clock.Now().Sub(ts.LastActivity)
	}
	return st
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
