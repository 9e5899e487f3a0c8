// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"fmt"
	"time"
)

// Config is the auto-logout configuration snapshot read on every Arm.
type Config struct {
	// Enabled turns inactivity tracking on or off.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// InactivityTimeoutMinutes is the idle period before the warning is raised.
	InactivityTimeoutMinutes int `toml:"inactivity_timeout_minutes" json:"inactivity_timeout_minutes" yaml:"inactivity_timeout_minutes"`

	// WarningTimeoutSeconds is how long the warning may stay unacknowledged.
	WarningTimeoutSeconds int `toml:"warning_timeout_seconds" json:"warning_timeout_seconds" yaml:"warning_timeout_seconds"`
}

// Valid reports whether both durations are positive. A Tracker refuses to
// arm with a config that is not valid.
func (c Config) Valid() bool {
	return c.InactivityTimeoutMinutes > 0 && c.WarningTimeoutSeconds > 0
}

// Active reports whether the config asks for tracking and can be scheduled.
func (c Config) Active() bool {
	return c.Enabled && c.Valid()
}

// IdleTimeout returns the idle period as a duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutMinutes) * time.Minute
}

// WarningTimeout returns the warning period as a duration.
func (c Config) WarningTimeout() time.Duration {
	return time.Duration(c.WarningTimeoutSeconds) * time.Second
}

// String renders the config for logs.
func (c Config) String() string {
	if !c.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("idle=%dm warning=%ds", c.InactivityTimeoutMinutes, c.WarningTimeoutSeconds)
}
