// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
)

// Publisher receives interaction events. *activity.Bus implements it.
type Publisher interface {
	Publish(ev activity.Event)
}

// EventFor translates terminal input into an activity event. Messages that
// are not user input report false.
func EventFor(msg tea.Msg, now time.Time) (activity.Event, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return activity.Event{Kind: activity.EventKeyDown, At: now}, true

	case tea.MouseMsg:
		kind, ok := mouseKind(msg)
		if !ok {
			return activity.Event{}, false
		}
		return activity.Event{Kind: kind, At: now}, true
	}
	return activity.Event{}, false
}

// mouseKind classifies a mouse report. Plain pointer motion is only reported
// when the program runs with tea.WithMouseAllMotion.
func mouseKind(msg tea.MouseMsg) (activity.EventKind, bool) {
	ev := tea.MouseEvent(msg)
	switch {
	case ev.IsWheel():
		return activity.EventScroll, true
	case ev.Action == tea.MouseActionMotion:
		return activity.EventPointerMove, true
	case ev.Action == tea.MouseActionRelease:
		return activity.EventClick, true
	case ev.Button != tea.MouseButtonNone:
		return activity.EventPointerDown, true
	}

	// Reports built from the legacy event type only.
	switch ev.Type {
	case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
		return activity.EventPointerDown, true
	case tea.MouseRelease:
		return activity.EventClick, true
	case tea.MouseMotion:
		return activity.EventPointerMove, true
	case tea.MouseWheelUp, tea.MouseWheelDown:
		return activity.EventScroll, true
	}
	return 0, false
}
