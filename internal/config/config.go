// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for taskmaster.
//
// Configuration file location (in order of precedence):
//   - --config flag
//   - TASKMASTER_CONFIG
//   - ~/.taskmaster/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
	"github.com/jeranaias/taskmaster-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete taskmaster configuration.
type Config struct {
	API         APIConfig     `toml:"api" json:"api" yaml:"api"`
	Preferences Preferences   `toml:"preferences" json:"preferences" yaml:"preferences"`
	Logging     LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
	Metrics     MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// APIConfig describes the task backend.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:5001/api
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`
	// TimeoutSecs bounds every request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
}

// Preferences are the user-editable settings exposed in the preferences view.
type Preferences struct {
	// StaySignedIn persists credentials across restarts.
	StaySignedIn bool            `toml:"stay_signed_in" json:"stay_signed_in" yaml:"stay_signed_in"`
	Activity     activity.Config `toml:"activity" json:"activity" yaml:"activity"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
	// File defaults to ~/.taskmaster/taskmaster.log when empty.
	File string `toml:"file" json:"file" yaml:"file"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	// Listen is a host:port; empty disables the listener.
	Listen string `toml:"listen" json:"listen" yaml:"listen"`
}

// Ranges accepted by the preferences view.
const (
	MinInactivityMinutes = 1
	MaxInactivityMinutes = 240
	MinWarningSeconds    = 10
	MaxWarningSeconds    = 300
)

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:5001/api",
			TimeoutSecs: 15,
		},
		Preferences: Preferences{
			StaySignedIn: false,
			Activity: activity.Config{
				Enabled:                  true,
				InactivityTimeoutMinutes: 10,
				WarningTimeoutSeconds:    60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the taskmaster state directory (~/.taskmaster).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".taskmaster"), nil
}

// Path resolves the config file path. An explicit override wins, then
// TASKMASTER_CONFIG, then ~/.taskmaster/config.toml.
func Path(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv("TASKMASTER_CONFIG"); env != "" {
		return env, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogFile returns the configured log file or the default under Dir.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskmaster.log"), nil
}

// ensureSecurePermissions tightens the config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config at path on top of the defaults. A missing file is not
// an error. Environment overrides are applied last, then the result is
// validated. Auto-logout values outside the preferences ranges are kept as
// written: the tracker stays dormant on values it cannot use.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		_ = ensureSecurePermissions(path)
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.validate(false); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# taskmaster configuration file\n")
	buf.WriteString("# Generated by taskmaster - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetDefaults fills values that must never be zero.
func (c *Config) SetDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//   - TASKMASTER_API_BASE_URL: overrides api.base_url
//   - TASKMASTER_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("TASKMASTER_API_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}
	if level := os.Getenv("TASKMASTER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns ValidateErrors when anything is
// out of range.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(activityRanges bool) error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.API.TimeoutSecs),
		})
	}

	if activityRanges {
		errs = append(errs, ValidateActivity(c.Preferences.Activity)...)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	switch c.Logging.Format {
	case "json", "pretty":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: json, pretty", c.Logging.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateActivity checks the auto-logout settings against the ranges the
// preferences view offers. Disabled configs still need sane values so that
// re-enabling them works.
func ValidateActivity(a activity.Config) ValidateErrors {
	var errs ValidateErrors
	if a.InactivityTimeoutMinutes < MinInactivityMinutes || a.InactivityTimeoutMinutes > MaxInactivityMinutes {
		errs = append(errs, ValidationError{
			Field: "preferences.activity.inactivity_timeout_minutes",
			Message: fmt.Sprintf("must be between %d and %d, got %d",
				MinInactivityMinutes, MaxInactivityMinutes, a.InactivityTimeoutMinutes),
		})
	}
	if a.WarningTimeoutSeconds < MinWarningSeconds || a.WarningTimeoutSeconds > MaxWarningSeconds {
		errs = append(errs, ValidationError{
			Field: "preferences.activity.warning_timeout_seconds",
			Message: fmt.Sprintf("must be between %d and %d, got %d",
				MinWarningSeconds, MaxWarningSeconds, a.WarningTimeoutSeconds),
		})
	}
	return errs
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// ErrUnknownKey is returned for keys that do not name a setting.
var ErrUnknownKey = errors.New("unknown config key")

// Get retrieves a value by its TOML key path, e.g. "preferences.activity.enabled".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by its TOML key path. String input is converted to
// the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if field.Kind() == reflect.Struct {
		return fmt.Errorf("%w: %s is a section", ErrUnknownKey, key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, fmt.Errorf("%w: empty key", ErrUnknownKey)
	}

	v := reflect.ValueOf(c).Elem()
	parts := strings.Split(key, ".")
	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("%w: %s is not a section", ErrUnknownKey, strings.Join(parts[:i], "."))
		}
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return v, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.TrimSpace(strVal))
			if err != nil {
				switch strings.ToLower(strings.TrimSpace(strVal)) {
				case "yes", "on":
					boolVal = true
				case "no", "off":
					boolVal = false
				default:
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation, sorted.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
			if tag == "" || tag == "-" {
				continue
			}
			name := tag
			if prefix != "" {
				name = prefix + "." + tag
			}
			if t.Field(i).Type.Kind() == reflect.Struct {
				walk(t.Field(i).Type, name)
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	sort.Strings(keys)
	return keys
}
