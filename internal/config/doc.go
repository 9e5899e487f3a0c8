// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and persists taskmaster configuration.
//
// # Key Types
//
//   - Config: API, preferences, logging and metrics sections
//   - Preferences: stay-signed-in flag and the auto-logout settings
//   - Store: the live config, with change subscriptions and file watching
//
// # Configuration Precedence
//
//   - --config flag or TASKMASTER_CONFIG
//   - ~/.taskmaster/config.toml
//   - Built-in defaults
//
// Environment variables TASKMASTER_API_BASE_URL and TASKMASTER_LOG_LEVEL
// override the file.
//
// # Usage
//
//	store, err := config.Open(path, logger)
//	if err != nil {
//	    return err
//	}
//	unsubscribe := store.Subscribe(func(old, new config.Config) { ... })
//	defer unsubscribe()
//	_ = store.Watch(ctx, 0)
package config
