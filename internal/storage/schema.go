// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema creates the local state tables.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Single row: the persisted "stay signed in" credentials
CREATE TABLE IF NOT EXISTS credentials (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    user_json TEXT NOT NULL,
    token TEXT NOT NULL,
    refresh_token TEXT NOT NULL DEFAULT '',
    saved_at INTEGER NOT NULL   -- Unix timestamp
);

-- Append-only log of logins, warnings and logouts
CREATE TABLE IF NOT EXISTS session_events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,         -- login, warning, resume, stay, logout
    reason TEXT NOT NULL DEFAULT '',
    username TEXT NOT NULL DEFAULT '',
    at INTEGER NOT NULL         -- Unix milliseconds
);

CREATE INDEX IF NOT EXISTS idx_session_events_at ON session_events(at);
`
