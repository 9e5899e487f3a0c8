// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity implements the inactivity auto-logout state machine.
//
// A Tracker watches qualifying interaction events (pointer, keyboard, scroll,
// touch) delivered through a Source, resets an idle timer on every throttled
// event, escalates to a warning once the idle timer fires, and forces logout
// when the warning is not acknowledged before the logout timer fires.
//
// # States
//
//	Dormant --Arm--> Idle --idle timer--> Warning --logout timer--> Expired
//	                  ^  \__activity__/      |
//	                  |______________________| activity / StayLoggedIn
//
// Expired is terminal for a Tracker instance. Disarm returns any non-expired
// Tracker to Dormant.
//
// # Timers
//
// At most one idle timer and at most one logout timer are pending at any
// instant. Every transition cancels the timers that could race with it, and
// every scheduled callback carries the schedule generation it was created
// under so a callback from a superseded schedule is a no-op.
//
// # Usage
//
//	bus := activity.NewBus()
//	tr, err := activity.NewTracker(activity.Options{
//	    Session:   authSession,
//	    Config:    prefs,
//	    Events:    bus,
//	    OnWarning: showDialog,
//	    OnLogout:  logout,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := tr.Arm(); err != nil {
//	    return err
//	}
//	defer tr.Disarm()
//
//	// from the UI event loop
//	bus.Publish(activity.Event{Kind: activity.EventKeyDown})
//
// Tests drive the Tracker with FakeClock, which fires due callbacks
// synchronously from Advance.
package activity
