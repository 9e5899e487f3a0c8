// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for taskmaster.
//
// A single SQLite database (~/.taskmaster/state.db) holds the credentials
// kept when the user chooses to stay signed in, and an append-only log of
// session events (logins, inactivity warnings, logouts).
//
// # Usage
//
//	store, err := storage.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_, err = store.RecordEvent(ctx, storage.Event{Kind: storage.EventLogout, Reason: "inactivity"})
//	events, err := store.RecentEvents(ctx, 10)
package storage
