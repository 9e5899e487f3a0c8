// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the TaskMaster client:
// crash-safe file writes for the preferences file and column-aware string
// truncation for the terminal UI.
//
//	err := util.AtomicWriteFileWithDir(path, data, 0600, 0700)
//	title := util.Truncate(todo.Todo, width-4)
package util
