// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskmaster-tui/internal/logging"
	"github.com/jeranaias/taskmaster-tui/internal/session"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) received() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

func TestNotifierDeliversInOrder(t *testing.T) {
	n := NewNotifier(logging.Discard())
	sender := &recordingSender{}

	n.Warning(time.Minute)
	n.Resumed()
	n.LoggedOut(session.ReasonInactivity)

	done := make(chan struct{})
	go func() {
		n.Run(sender)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(sender.received()) == 3 }, time.Second, 5*time.Millisecond)
	n.Close()
	<-done

	assert.Equal(t, []tea.Msg{
		WarningMsg{Timeout: time.Minute},
		ResumedMsg{},
		LoggedOutMsg{Reason: session.ReasonInactivity},
	}, sender.received())
}

func TestNotifierNeverBlocks(t *testing.T) {
	n := NewNotifier(logging.Discard())

	finished := make(chan struct{})
	go func() {
		for i := 0; i < DefaultNotifyQueue*2; i++ {
			n.Resumed()
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked with no consumer")
	}
}

func TestNotifierDropsAfterClose(t *testing.T) {
	n := NewNotifier(logging.Discard())
	n.Close()
	n.Close()

	n.LoggedOut(session.ReasonManual)

	sender := &recordingSender{}
	n.Run(sender)
	assert.Empty(t, sender.received())
}
