// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"errors"
	"sync"
	"time"
)

// =============================================================================
// EVENT KINDS
// =============================================================================

// EventKind identifies a raw interaction signal.
type EventKind int

const (
	EventPointerDown EventKind = iota + 1
	EventPointerMove
	EventKeyPress
	EventScroll
	EventTouchStart
	EventClick
	EventKeyDown
)

// QualifyingEvents lists every kind that counts as proof of user presence.
func QualifyingEvents() []EventKind {
	return []EventKind{
		EventPointerDown,
		EventPointerMove,
		EventKeyPress,
		EventScroll,
		EventTouchStart,
		EventClick,
		EventKeyDown,
	}
}

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case EventPointerDown:
		return "pointerdown"
	case EventPointerMove:
		return "pointermove"
	case EventKeyPress:
		return "keypress"
	case EventScroll:
		return "scroll"
	case EventTouchStart:
		return "touchstart"
	case EventClick:
		return "click"
	case EventKeyDown:
		return "keydown"
	default:
		return "unknown"
	}
}

// Event is a single interaction signal.
type Event struct {
	Kind EventKind
	At   time.Time
}

// =============================================================================
// SOURCE
// =============================================================================

var (
	// ErrBusClosed is returned when subscribing to a closed Bus.
	ErrBusClosed = errors.New("activity: event bus closed")

	// ErrNoEventKinds is returned when a subscription names no kinds.
	ErrNoEventKinds = errors.New("activity: no event kinds to subscribe to")

	// ErrNilHandler is returned when a subscription has no handler.
	ErrNilHandler = errors.New("activity: nil event handler")
)

// Source delivers interaction events to subscribers. The returned function
// releases the subscription and is safe to call more than once.
type Source interface {
	Subscribe(kinds []EventKind, fn func(Event)) (unsubscribe func(), err error)
}

// Bus is an application-wide Source. The UI publishes every interaction on
// it regardless of which widget has focus.
type Bus struct {
	mu     sync.RWMutex
	next   uint64
	subs   map[uint64]subscription
	closed bool
}

type subscription struct {
	kinds map[EventKind]struct{}
	fn    func(Event)
}

// NewBus creates an open Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscription)}
}

// Subscribe registers fn for the given kinds.
func (b *Bus) Subscribe(kinds []EventKind, fn func(Event)) (func(), error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	if len(kinds) == 0 {
		return nil, ErrNoEventKinds
	}

	set := make(map[EventKind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	b.next++
	id := b.next
	b.subs[id] = subscription{kinds: set, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}, nil
}

// Publish delivers ev to every subscriber of its kind. Handlers run on the
// caller's goroutine, outside the bus lock.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, s := range b.subs {
		if _, ok := s.kinds[ev.Kind]; ok {
			handlers = append(handlers, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops all subscriptions and rejects new ones.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[uint64]subscription)
}
