// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the taskmaster command line.
//
// Running taskmaster with no subcommand starts the terminal UI. The
// subcommands cover what is useful without it:
//
//	taskmaster login [--remember]        Sign in and keep the credentials
//	taskmaster signup [--remember]       Create an account and sign in
//	taskmaster logout                    Forget stored credentials
//	taskmaster status [-o text|json|yaml]
//	taskmaster prefs show                Current preferences
//	taskmaster prefs set <key> <value>   Change one setting
//	taskmaster session events [-n N] [-o text|json|yaml]
//	taskmaster version
//
// Every command accepts --config, --log-level and --log-format. Logs go to
// the configured log file so they never interleave with terminal output.
package cli
