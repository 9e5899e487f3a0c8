// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/config"
	"github.com/jeranaias/taskmaster-tui/internal/storage"
)

// Logout reasons recorded in the event log and passed to the Notifier.
const (
	ReasonInactivity       = "inactivity"
	ReasonWarningDismissed = "warning_dismissed"
	ReasonManual           = "manual"
)

// LogoutTimeout bounds the fire-and-forget logout effect.
const LogoutTimeout = 10 * time.Second

// =============================================================================
// COLLABORATORS
// =============================================================================

// AuthSession is the signed-in session the Controller follows.
type AuthSession interface {
	activity.SessionState
	User() (auth.User, bool)
	Logout(ctx context.Context) error
	OnChange(fn auth.ChangeFunc) func()
}

// Preferences supplies the auto-logout settings and change notifications.
type Preferences interface {
	activity.ConfigSource
	Subscribe(fn config.ChangeFunc) func()
}

// EventRecorder appends to the session event log.
type EventRecorder interface {
	RecordEvent(ctx context.Context, ev storage.Event) (storage.Event, error)
}

// Notifier is the UI side of the tracker. Methods are called from timer
// goroutines and must not block.
type Notifier interface {
	// Warning asks the UI to show the warning with the given countdown.
	Warning(timeout time.Duration)
	// Resumed hides the warning after activity or an acknowledgement.
	Resumed()
	// LoggedOut reports that the session ended.
	LoggedOut(reason string)
}

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("session: controller closed")

// Options configures a Controller.
type Options struct {
	Auth     AuthSession
	Prefs    Preferences
	Events   activity.Source
	Notifier Notifier

	// Optional.
	Clock            activity.Clock
	ThrottleInterval time.Duration
	Recorder         EventRecorder
	Observer         activity.Observer
	Logger           *slog.Logger
}

// =============================================================================
// CONTROLLER
// =============================================================================

// binding is one Tracker and what the Controller learned about it.
type binding struct {
	tracker       *activity.Tracker
	config        activity.Config
	expireTrigger activity.Trigger
}

// Controller creates, rebuilds and tears down the Tracker so that one runs
// exactly while a user is signed in with auto-logout enabled.
type Controller struct {
	opts   Options
	clock  activity.Clock
	logger *slog.Logger

	mu           sync.Mutex
	current      *binding
	unsubscribes []func()
	started      bool
	closed       bool

	pending sync.WaitGroup
}

// New creates a Controller. Call Start to begin following auth and
// preference changes.
func New(opts Options) (*Controller, error) {
	if opts.Auth == nil || opts.Prefs == nil {
		return nil, activity.ErrMissingDependency
	}
	if opts.Events == nil {
		return nil, activity.ErrNoEventSource
	}
	clock := opts.Clock
	if clock == nil {
		clock = activity.RealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		opts:   opts,
		clock:  clock,
		logger: logger.With("component", "session"),
	}, nil
}

// Start subscribes to auth and preference changes and performs the first Sync.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	authUnsub := c.opts.Auth.OnChange(func(authenticated bool) {
		if authenticated {
			c.record(storage.Event{Kind: storage.EventLogin})
		}
		c.Sync()
	})
	prefsUnsub := c.opts.Prefs.Subscribe(func(old, next config.Config) {
		if old.Preferences.Activity != next.Preferences.Activity {
			c.Sync()
		}
	})

	c.mu.Lock()
	c.unsubscribes = append(c.unsubscribes, authUnsub, prefsUnsub)
	c.mu.Unlock()

	c.Sync()
	return nil
}

// Sync brings the Tracker in line with the current session and preferences:
// torn down when signed out, disabled or invalid; rebuilt when the
// auto-logout config differs from the one the running Tracker was built with.
// An expired Tracker is kept until the session is signed out.
func (c *Controller) Sync() {
	cfg := c.opts.Prefs.ActivityConfig()
	authenticated := c.opts.Auth.IsAuthenticated()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	old := c.current
	if !authenticated || !cfg.Active() {
		c.current = nil
		c.mu.Unlock()
		if authenticated && cfg.Enabled && !cfg.Valid() {
			c.logger.Warn("auto-logout disabled by invalid settings", "activity", cfg.String())
		}
		if old != nil {
			c.retire(old)
			c.logger.Info("tracker torn down", "authenticated", authenticated, "activity", cfg.String())
		}
		return
	}

	if old != nil && (old.config == cfg || old.tracker.Phase() == activity.PhaseExpired) {
		c.mu.Unlock()
		return
	}

	b, err := c.newBinding(cfg)
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("failed to create tracker", "error", err)
		return
	}
	c.current = b
	c.mu.Unlock()

	if old != nil {
		c.retire(old)
	}
	if err := b.tracker.Arm(); err != nil {
		c.logger.Error("failed to arm tracker", "tracker", b.tracker.ID(), "error", err)
		return
	}
	c.logger.Info("tracker armed", "tracker", b.tracker.ID(), "activity", cfg.String())
}

// retire disarms a Tracker that is no longer current. A warning it raised
// is withdrawn so the dialog cannot outlive it.
func (c *Controller) retire(b *binding) {
	warning := b.tracker.Phase() == activity.PhaseWarning
	b.tracker.Disarm()
	if warning && c.opts.Notifier != nil {
		c.opts.Notifier.Resumed()
	}
}

// newBinding builds a Tracker whose callbacks only act while it is current.
func (c *Controller) newBinding(cfg activity.Config) (*binding, error) {
	b := &binding{config: cfg}

	t, err := activity.NewTracker(activity.Options{
		Session:          c.opts.Auth,
		Config:           activity.StaticConfig(cfg),
		Events:           c.opts.Events,
		Clock:            c.clock,
		ThrottleInterval: c.opts.ThrottleInterval,
		OnWarning:        func() { c.onWarning(b) },
		OnResume:         func() { c.onResume(b) },
		OnLogout:         func() { c.onLogout(b) },
		Observer:         &bindingObserver{c: c, b: b},
		Logger:           c.logger,
	})
	if err != nil {
		return nil, err
	}
	b.tracker = t
	return b, nil
}

func (c *Controller) isCurrent(b *binding) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current == b
}

func (c *Controller) onWarning(b *binding) {
	if !c.isCurrent(b) {
		return
	}
	c.record(storage.Event{Kind: storage.EventWarning})
	if c.opts.Notifier != nil {
		c.opts.Notifier.Warning(b.config.WarningTimeout())
	}
}

func (c *Controller) onResume(b *binding) {
	if !c.isCurrent(b) {
		return
	}
	c.record(storage.Event{Kind: storage.EventResume})
	if c.opts.Notifier != nil {
		c.opts.Notifier.Resumed()
	}
}

func (c *Controller) onLogout(b *binding) {
	if !c.isCurrent(b) {
		return
	}
	c.mu.Lock()
	reason := ReasonInactivity
	if b.expireTrigger == activity.TriggerForceLogout {
		reason = ReasonWarningDismissed
	}
	c.mu.Unlock()

	c.endSession(reason)
}

// endSession records the logout, tells the UI, and runs the auth logout in
// the background.
func (c *Controller) endSession(reason string) {
	c.record(storage.Event{Kind: storage.EventLogout, Reason: reason})
	if c.opts.Notifier != nil {
		c.opts.Notifier.LoggedOut(reason)
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), LogoutTimeout)
		defer cancel()
		if err := c.opts.Auth.Logout(ctx); err != nil {
			c.logger.Warn("logout effect failed", "reason", reason, "error", err)
		}
	}()
}

// bindingObserver remembers the trigger that expired its Tracker and
// forwards every transition to the configured Observer.
type bindingObserver struct {
	c *Controller
	b *binding
}

func (o *bindingObserver) Transition(from, to activity.Phase, trigger activity.Trigger) {
	if to == activity.PhaseExpired {
		o.c.mu.Lock()
		o.b.expireTrigger = trigger
		o.c.mu.Unlock()
	}
	if o.c.opts.Observer != nil {
		o.c.opts.Observer.Transition(from, to, trigger)
	}
}

// =============================================================================
// USER ACTIONS
// =============================================================================

// StayLoggedIn acknowledges the warning. The acknowledgement is recorded even
// when the key press that made it already resumed the Tracker.
func (c *Controller) StayLoggedIn() {
	b := c.binding()
	if b == nil {
		return
	}
	c.record(storage.Event{Kind: storage.EventStay})
	b.tracker.StayLoggedIn()
}

// ForceLogout ends the session from the warning (the Logout button or the
// countdown reaching zero). It does nothing unless the current Tracker is
// the one showing a warning.
func (c *Controller) ForceLogout() {
	b := c.binding()
	if b == nil || b.tracker.Phase() != activity.PhaseWarning {
		return
	}
	b.tracker.ForceLogout()
}

// Logout ends the session at the user's request.
func (c *Controller) Logout() {
	c.mu.Lock()
	old := c.current
	c.current = nil
	c.mu.Unlock()

	if old != nil {
		c.retire(old)
	}
	c.endSession(ReasonManual)
}

// Wait blocks until background logout effects finish.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Close tears down the Tracker and drops subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	old := c.current
	c.current = nil
	unsubscribes := c.unsubscribes
	c.unsubscribes = nil
	c.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	if old != nil {
		old.tracker.Disarm()
	}
}

func (c *Controller) binding() *binding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) record(ev storage.Event) {
	if c.opts.Recorder == nil {
		return
	}
	if ev.Username == "" {
		if user, ok := c.opts.Auth.User(); ok {
			ev.Username = user.Username
		}
	}
	ev.At = c.clock.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.opts.Recorder.RecordEvent(ctx, ev); err != nil {
		c.logger.Warn("failed to record session event", "kind", string(ev.Kind), "error", err)
	}
}
