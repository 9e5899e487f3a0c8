// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth talks to the task backend's authentication endpoints and
// holds the signed-in session.
//
// Client is a thin JSON-over-HTTP client shared with the todo package.
// Session owns the current user and token pair, persists them through a
// CredentialStore when the user chose to stay signed in, and notifies
// subscribers on login and logout.
package auth
