// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session ties the inactivity tracker to the signed-in session.
//
// The Controller follows auth and preference changes. It creates a Tracker
// when a user signs in with auto-logout enabled, rebuilds it when the
// timeout settings change, and tears it down on logout. Tracker callbacks
// are forwarded to a Notifier (the UI) and recorded in the session event
// log; an expired session is logged out in the background.
//
// # Usage
//
//	ctrl, err := session.New(session.Options{
//	    Auth:     authSession,
//	    Prefs:    prefsStore,
//	    Events:   bus,
//	    Notifier: ui,
//	    Recorder: db,
//	})
//	if err != nil {
//	    return err
//	}
//	defer ctrl.Close()
//	_ = ctrl.Start()
package session
