// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model for the TaskMaster client.
//
// Every key and mouse message is published to the activity bus before it
// is routed, so the auto-logout tracker sees input even while the warning
// dialog is open. Session lifecycle changes arrive from the controller as
// WarningMsg, ResumedMsg and LoggedOutMsg through a Notifier.
package app
