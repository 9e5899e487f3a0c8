// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/taskmaster-tui/internal/logging"
)

// =============================================================================
// PHASES AND TRIGGERS
// =============================================================================

// Phase is the Tracker state.
type Phase int

const (
	// PhaseDormant means no timer is pending: not armed, disabled, or the
	// session is not authenticated.
	PhaseDormant Phase = iota
	// PhaseIdle means the idle timer is running toward the warning.
	PhaseIdle
	// PhaseWarning means the warning is showing and the logout timer is running.
	PhaseWarning
	// PhaseExpired means logout was triggered. Terminal for the instance.
	PhaseExpired
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDormant:
		return "dormant"
	case PhaseIdle:
		return "idle"
	case PhaseWarning:
		return "warning"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Trigger names what caused a transition.
type Trigger string

const (
	TriggerArm           Trigger = "arm"
	TriggerDisarm        Trigger = "disarm"
	TriggerActivity      Trigger = "activity"
	TriggerIdleTimeout   Trigger = "idle_timeout"
	TriggerStayLoggedIn  Trigger = "stay_logged_in"
	TriggerForceLogout   Trigger = "force_logout"
	TriggerLogoutTimeout Trigger = "logout_timeout"
	TriggerSignedOut     Trigger = "signed_out"
)

// Observer is told about every transition, including Idle to Idle resets.
// It is called after the Tracker lock is released.
type Observer interface {
	Transition(from, to Phase, trigger Trigger)
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// SessionState reports whether a user is signed in.
type SessionState interface {
	IsAuthenticated() bool
}

// ConfigSource supplies the current auto-logout configuration.
type ConfigSource interface {
	ActivityConfig() Config
}

// StaticConfig is a ConfigSource that always returns the same Config.
type StaticConfig Config

// ActivityConfig returns the config.
func (s StaticConfig) ActivityConfig() Config { return Config(s) }

var (
	// ErrNoEventSource is returned when a Tracker is built without a Source.
	ErrNoEventSource = errors.New("activity: no event source")

	// ErrMissingDependency is returned when the session or config source is nil.
	ErrMissingDependency = errors.New("activity: session and config sources are required")

	// ErrExpired is returned by Arm on a Tracker that already forced logout.
	ErrExpired = errors.New("activity: tracker expired")
)

// Options configures a Tracker.
type Options struct {
	Session SessionState
	Config  ConfigSource
	Events  Source

	// Clock defaults to RealClock.
	Clock Clock

	// ThrottleInterval defaults to DefaultThrottleInterval.
	ThrottleInterval time.Duration

	// Kinds defaults to QualifyingEvents.
	Kinds []EventKind

	// OnWarning fires on Idle -> Warning.
	OnWarning func()
	// OnLogout fires once on entry to Expired.
	OnLogout func()
	// OnResume fires on Warning -> Idle.
	OnResume func()

	Observer Observer
	Logger   *slog.Logger
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker is the inactivity state machine.
type Tracker struct {
	id       string
	clock    Clock
	session  SessionState
	config   ConfigSource
	events   Source
	kinds    []EventKind
	throttle *Throttle

	onWarning func()
	onLogout  func()
	onResume  func()
	observer  Observer
	logger    *slog.Logger

	mu           sync.Mutex
	phase        Phase
	gen          uint64
	armed        Config
	lastActivity time.Time
	deadline     time.Time
	idleTimer    Timer
	logoutTimer  Timer
	unsubscribe  func()
}

// Status is a point-in-time view of a Tracker.
type Status struct {
	ID           string
	Phase        Phase
	Config       Config
	LastActivity time.Time
	// Deadline is when the pending timer fires: the warning while Idle,
	// the forced logout while Warning. Zero otherwise.
	Deadline  time.Time
	Remaining time.Duration
}

// NewTracker creates a dormant Tracker. Call Arm to start it.
func NewTracker(opts Options) (*Tracker, error) {
	if opts.Events == nil {
		return nil, ErrNoEventSource
	}
	if opts.Session == nil || opts.Config == nil {
		return nil, ErrMissingDependency
	}

	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	interval := opts.ThrottleInterval
	if interval == 0 {
		interval = DefaultThrottleInterval
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = QualifyingEvents()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.NewString()
	return &Tracker{
		id:        id,
		clock:     clock,
		session:   opts.Session,
		config:    opts.Config,
		events:    opts.Events,
		kinds:     kinds,
		throttle:  NewThrottle(interval),
		onWarning: opts.OnWarning,
		onLogout:  opts.OnLogout,
		onResume:  opts.OnResume,
		observer:  opts.Observer,
		logger:    logger.With("component", "activity", "tracker", id),
		phase:     PhaseDormant,
	}, nil
}

// ID returns the instance identifier used in logs.
func (t *Tracker) ID() string { return t.id }

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Status returns a snapshot of the Tracker.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{
		ID:           t.id,
		Phase:        t.phase,
		Config:       t.armed,
		LastActivity: t.lastActivity,
	}
	if t.phase == PhaseIdle || t.phase == PhaseWarning {
		st.Deadline = t.deadline
		if remaining := t.deadline.Sub(t.clock.Now()); remaining > 0 {
			st.Remaining = remaining
		}
	}
	return st
}

// Arm (re)computes the schedule from the current config and session state.
// Prior timers are always cancelled first. With tracking disabled, an invalid
// config, or no authenticated session the Tracker goes dormant and Arm
// returns nil. Subscription failure is returned to the caller.
func (t *Tracker) Arm() error {
	t.mu.Lock()
	if t.phase == PhaseExpired {
		t.mu.Unlock()
		return ErrExpired
	}

	from := t.phase
	t.cancelTimersLocked()

	cfg := t.config.ActivityConfig()
	authenticated := t.session.IsAuthenticated()
	if !authenticated || !cfg.Active() {
		unsubscribe := t.releaseLocked()
		t.phase = PhaseDormant
		t.armed = cfg
		t.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		if cfg.Enabled && !cfg.Valid() {
			t.logger.Warn("refusing to arm with invalid config", "config", cfg.String(),
				"inactivity_timeout_minutes", cfg.InactivityTimeoutMinutes,
				"warning_timeout_seconds", cfg.WarningTimeoutSeconds)
		} else {
			t.logger.Debug("tracker dormant", "authenticated", authenticated, "config", cfg.String())
		}
		t.transitioned(from, PhaseDormant, TriggerArm)
		return nil
	}

	if t.unsubscribe == nil {
		unsubscribe, err := t.events.Subscribe(t.kinds, t.handleEvent)
		if err != nil {
			t.phase = PhaseDormant
			t.mu.Unlock()
			t.transitioned(from, PhaseDormant, TriggerArm)
			return fmt.Errorf("subscribe to activity events: %w", err)
		}
		t.unsubscribe = unsubscribe
	}

	t.armed = cfg
	t.startIdleLocked()
	t.mu.Unlock()

	t.logger.Info("tracker armed", "config", cfg.String())
	t.transitioned(from, PhaseIdle, TriggerArm)
	return nil
}

// Disarm cancels all timers and releases the event subscription. A Tracker
// that has not expired returns to Dormant.
func (t *Tracker) Disarm() {
	t.mu.Lock()
	from := t.phase
	t.cancelTimersLocked()
	unsubscribe := t.releaseLocked()
	if t.phase != PhaseExpired {
		t.phase = PhaseDormant
	}
	to := t.phase
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	t.transitioned(from, to, TriggerDisarm)
}

// StayLoggedIn acknowledges the warning. It is the same reset that activity
// performs, without the throttle.
func (t *Tracker) StayLoggedIn() {
	t.reset(TriggerStayLoggedIn, false)
}

// ForceLogout expires the Tracker immediately and invokes the logout callback.
// It does nothing unless the Tracker is Idle or Warning, so the callback runs
// at most once per instance.
func (t *Tracker) ForceLogout() {
	t.mu.Lock()
	if t.phase != PhaseIdle && t.phase != PhaseWarning {
		t.mu.Unlock()
		return
	}
	t.expireLocked(TriggerForceLogout)
}

// handleEvent is the Source callback.
func (t *Tracker) handleEvent(ev Event) {
	t.logger.Debug("activity observed", "kind", ev.Kind.String())
	t.notifyActivity()
}

// notifyActivity applies the throttle and then resets the schedule.
func (t *Tracker) notifyActivity() {
	t.reset(TriggerActivity, true)
}

func (t *Tracker) reset(trigger Trigger, throttled bool) {
	t.mu.Lock()
	if t.phase != PhaseIdle && t.phase != PhaseWarning {
		t.mu.Unlock()
		return
	}
	if throttled && !t.throttle.Allow(t.clock.Now()) {
		t.mu.Unlock()
		return
	}

	from := t.phase
	// logout timer is cancelled before the new idle timer exists
	t.cancelTimersLocked()
	t.startIdleLocked()
	onResume := t.onResume
	t.mu.Unlock()

	t.transitioned(from, PhaseIdle, trigger)
	if from == PhaseWarning && onResume != nil {
		onResume()
	}
}

// =============================================================================
// TIMER CALLBACKS
// =============================================================================

func (t *Tracker) idleTimerFired(gen uint64) {
	authenticated := t.session.IsAuthenticated()

	t.mu.Lock()
	if gen != t.gen || t.phase != PhaseIdle {
		t.mu.Unlock()
		t.logger.Debug("stale idle timer ignored", "generation", gen)
		return
	}

	t.idleTimer = nil
	if !authenticated {
		// Signed out before the change reached the owner.
		t.cancelTimersLocked()
		unsubscribe := t.releaseLocked()
		t.phase = PhaseDormant
		t.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		t.logger.Debug("idle timer fired without a session")
		t.transitioned(PhaseIdle, PhaseDormant, TriggerSignedOut)
		return
	}
	t.gen++
	next := t.gen
	t.phase = PhaseWarning
	d := t.armed.WarningTimeout()
	t.deadline = t.clock.Now().Add(d)
	t.logoutTimer = t.clock.AfterFunc(d, func() { t.logoutTimerFired(next) })
	onWarning := t.onWarning
	t.mu.Unlock()

	t.logger.Info("inactivity warning", "logout_in", logging.Duration(d))
	t.transitioned(PhaseIdle, PhaseWarning, TriggerIdleTimeout)
	if onWarning != nil {
		onWarning()
	}
}

func (t *Tracker) logoutTimerFired(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.phase != PhaseWarning {
		t.mu.Unlock()
		t.logger.Debug("stale logout timer ignored", "generation", gen)
		return
	}
	t.logoutTimer = nil
	t.expireLocked(TriggerLogoutTimeout)
}

// =============================================================================
// LOCKED HELPERS
// =============================================================================

// startIdleLocked enters Idle with a fresh idle timer.
func (t *Tracker) startIdleLocked() {
	now := t.clock.Now()
	t.gen++
	gen := t.gen
	d := t.armed.IdleTimeout()

	t.phase = PhaseIdle
	t.lastActivity = now
	t.deadline = now.Add(d)
	t.idleTimer = t.clock.AfterFunc(d, func() { t.idleTimerFired(gen) })
}

// cancelTimersLocked stops both timers and bumps the generation so any
// callback already in flight becomes a no-op.
func (t *Tracker) cancelTimersLocked() {
	if t.logoutTimer != nil {
		t.logoutTimer.Stop()
		t.logoutTimer = nil
	}
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
	t.gen++
	t.deadline = time.Time{}
}

// releaseLocked detaches the subscription and returns the function that
// releases it; the caller invokes it after unlocking.
func (t *Tracker) releaseLocked() func() {
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	return unsubscribe
}

// expireLocked enters Expired, unlocks, and runs the logout callback.
func (t *Tracker) expireLocked(trigger Trigger) {
	from := t.phase
	t.cancelTimersLocked()
	unsubscribe := t.releaseLocked()
	t.phase = PhaseExpired
	onLogout := t.onLogout
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	t.logger.Info("session expired", "trigger", string(trigger))
	t.transitioned(from, PhaseExpired, trigger)
	if onLogout != nil {
		onLogout()
	}
}

func (t *Tracker) transitioned(from, to Phase, trigger Trigger) {
	if from != to {
		t.logger.Info("state transition", "from", from.String(), "to", to.String(), "trigger", string(trigger))
	}
	// Idle -> Idle is a reset and is reported; other self-edges are not.
	if t.observer != nil && (from != to || to == PhaseIdle) {
		t.observer.Transition(from, to, trigger)
	}
}
