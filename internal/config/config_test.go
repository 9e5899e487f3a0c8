// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
)

// TestConfig_Default tests that Default() matches the client defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, activity.Config{
		Enabled:                  true,
		InactivityTimeoutMinutes: 10,
		WarningTimeoutSeconds:    60,
	}, cfg.Preferences.Activity)
	assert.False(t, cfg.Preferences.StaySignedIn)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TASKMASTER_API_BASE_URL", "")
	t.Setenv("TASKMASTER_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	t.Setenv("TASKMASTER_API_BASE_URL", "")
	t.Setenv("TASKMASTER_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[preferences.activity]
inactivity_timeout_minutes = 5
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Preferences.Activity.InactivityTimeoutMinutes)
	assert.Equal(t, 60, cfg.Preferences.Activity.WarningTimeoutSeconds, "unset keys keep defaults")
	assert.True(t, cfg.Preferences.Activity.Enabled)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKMASTER_API_BASE_URL", "https://tasks.example.com/api")
	t.Setenv("TASKMASTER_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TASKMASTER_API_BASE_URL", "")
	t.Setenv("TASKMASTER_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logging]
level = "loud"
`), 0600))

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "logging.level", verrs[0].Field)
}

func TestLoad_KeepsUnusableActivityValues(t *testing.T) {
	t.Setenv("TASKMASTER_API_BASE_URL", "")
	t.Setenv("TASKMASTER_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[preferences.activity]
enabled = true
inactivity_timeout_minutes = 0
warning_timeout_seconds = 5
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Preferences.Activity.InactivityTimeoutMinutes)
	assert.Equal(t, 5, cfg.Preferences.Activity.WarningTimeoutSeconds)
	assert.False(t, cfg.Preferences.Activity.Active(), "tracker stays dormant")
	assert.Error(t, cfg.Validate(), "writes still enforce the ranges")
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url ="), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("TASKMASTER_API_BASE_URL", "")
	t.Setenv("TASKMASTER_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Preferences.StaySignedIn = true
	cfg.Preferences.Activity = activity.Config{Enabled: false, InactivityTimeoutMinutes: 30, WarningTimeoutSeconds: 120}
	cfg.Metrics.Listen = "127.0.0.1:9464"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[preferences.activity]")
	assert.Contains(t, string(data), "inactivity_timeout_minutes = 30")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"valid default config", func(c *Config) {}, ""},
		{"minutes at lower bound", func(c *Config) { c.Preferences.Activity.InactivityTimeoutMinutes = 1 }, ""},
		{"minutes at upper bound", func(c *Config) { c.Preferences.Activity.InactivityTimeoutMinutes = 240 }, ""},
		{"minutes zero", func(c *Config) { c.Preferences.Activity.InactivityTimeoutMinutes = 0 }, "preferences.activity.inactivity_timeout_minutes"},
		{"minutes too large", func(c *Config) { c.Preferences.Activity.InactivityTimeoutMinutes = 241 }, "preferences.activity.inactivity_timeout_minutes"},
		{"seconds at lower bound", func(c *Config) { c.Preferences.Activity.WarningTimeoutSeconds = 10 }, ""},
		{"seconds too small", func(c *Config) { c.Preferences.Activity.WarningTimeoutSeconds = 9 }, "preferences.activity.warning_timeout_seconds"},
		{"seconds too large", func(c *Config) { c.Preferences.Activity.WarningTimeoutSeconds = 301 }, "preferences.activity.warning_timeout_seconds"},
		{"disabled still checks ranges", func(c *Config) {
			c.Preferences.Activity.Enabled = false
			c.Preferences.Activity.WarningTimeoutSeconds = -1
		}, "preferences.activity.warning_timeout_seconds"},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, "api.base_url"},
		{"bad timeout", func(c *Config) { c.API.TimeoutSecs = 0 }, "api.timeout_secs"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "expected ValidateErrors, got %v", err)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_GetSet(t *testing.T) {
	c := Default()

	require.NoError(t, c.Set("preferences.activity.inactivity_timeout_minutes", "25"))
	require.NoError(t, c.Set("preferences.activity.enabled", "off"))
	require.NoError(t, c.Set("preferences.stay_signed_in", true))
	require.NoError(t, c.Set("api.base_url", "https://example.com/api"))

	v, err := c.Get("preferences.activity.inactivity_timeout_minutes")
	require.NoError(t, err)
	assert.Equal(t, 25, v)
	assert.False(t, c.Preferences.Activity.Enabled)
	assert.True(t, c.Preferences.StaySignedIn)
	assert.Equal(t, "https://example.com/api", c.API.BaseURL)

	assert.ErrorIs(t, c.Set("preferences.nope", "1"), ErrUnknownKey)
	assert.ErrorIs(t, c.Set("preferences", "1"), ErrUnknownKey)
	assert.ErrorIs(t, c.Set("api.base_url.more", "1"), ErrUnknownKey)
	assert.Error(t, c.Set("api.timeout_secs", "soon"))
	assert.Error(t, c.Set("preferences.activity.enabled", "maybe"))

	_, err = c.Get("")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "preferences.activity.enabled")
	assert.Contains(t, keys, "preferences.activity.warning_timeout_seconds")
	assert.Contains(t, keys, "metrics.listen")
	assert.NotContains(t, keys, "preferences")

	c := Default()
	for _, k := range keys {
		_, err := c.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestPath(t *testing.T) {
	p, err := Path("/tmp/custom.toml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", p)

	t.Setenv("TASKMASTER_CONFIG", "/tmp/env.toml")
	p, err = Path("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.toml", p)

	t.Setenv("TASKMASTER_CONFIG", "")
	p, err = Path("")
	require.NoError(t, err)
	assert.Equal(t, "config.toml", filepath.Base(p))
	assert.Equal(t, ".taskmaster", filepath.Base(filepath.Dir(p)))
}
