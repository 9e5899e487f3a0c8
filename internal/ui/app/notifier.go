// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages delivered by the Notifier.
type (
	// WarningMsg opens the session timeout dialog.
	WarningMsg struct{ Timeout time.Duration }
	// ResumedMsg closes it after activity or "stay logged in".
	ResumedMsg struct{}
	// LoggedOutMsg reports the end of the session.
	LoggedOutMsg struct{ Reason string }
)

// DefaultNotifyQueue bounds the messages waiting for the program.
const DefaultNotifyQueue = 16

// Sender is the part of *tea.Program the Notifier uses.
type Sender interface {
	Send(msg tea.Msg)
}

// Notifier forwards session lifecycle callbacks to the Bubble Tea program.
// Callbacks can arrive from inside Update (StayLoggedIn, ForceLogout) where
// a direct Program.Send would block forever, so messages go through a
// queue drained by Run, in order.
type Notifier struct {
	queue  chan tea.Msg
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewNotifier creates a Notifier. Nothing is delivered until Run.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		queue:  make(chan tea.Msg, DefaultNotifyQueue),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Warning implements session.Notifier.
func (n *Notifier) Warning(timeout time.Duration) { n.enqueue(WarningMsg{Timeout: timeout}) }

// Resumed implements session.Notifier.
func (n *Notifier) Resumed() { n.enqueue(ResumedMsg{}) }

// LoggedOut implements session.Notifier.
func (n *Notifier) LoggedOut(reason string) { n.enqueue(LoggedOutMsg{Reason: reason}) }

func (n *Notifier) enqueue(msg tea.Msg) {
	select {
	case <-n.done:
		return
	default:
	}
	select {
	case n.queue <- msg:
	default:
		n.logger.Warn("notification dropped, queue full", "msg", msg)
	}
}

// Run delivers queued messages to target until Close. Run it in its own
// goroutine once the program exists.
func (n *Notifier) Run(target Sender) {
	for {
		select {
		case <-n.done:
			return
		default:
		}
		select {
		case <-n.done:
			return
		case msg := <-n.queue:
			target.Send(msg)
		}
	}
}

// Close stops Run and drops later notifications.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.done) })
}
