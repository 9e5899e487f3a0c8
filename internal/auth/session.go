// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrNotAuthenticated is returned when there is no session to act on.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned by Restore when stored tokens are past
	// their expiry and cannot be refreshed.
	ErrSessionExpired = errors.New("session expired")
)

// CredentialStore persists credentials between runs.
type CredentialStore interface {
	SaveCredentials(ctx context.Context, creds Credentials) error
	LoadCredentials(ctx context.Context) (Credentials, error)
	ClearCredentials(ctx context.Context) error
}

// API is the subset of Client a Session needs.
type API interface {
	Login(ctx context.Context, req LoginRequest) (Credentials, error)
	Register(ctx context.Context, req SignupRequest) (Credentials, error)
	Me(ctx context.Context, accessToken string) (User, error)
	Refresh(ctx context.Context, refreshToken string) (Credentials, error)
}

// ChangeFunc is called after the session logs in or out.
type ChangeFunc func(authenticated bool)

// SessionOptions configures a Session.
type SessionOptions struct {
	API API
	// Store is optional; without it credentials live only in memory.
	Store CredentialStore
	// StaySignedIn decides whether credentials are written to Store.
	StaySignedIn func() bool
	// LoginExpiresInMins is sent with logins when positive.
	LoginExpiresInMins int
	Now                func() time.Time
	Logger             *slog.Logger
}

// Session holds the signed-in user and tokens.
type Session struct {
	mu     sync.RWMutex
	creds  *Credentials
	subs   map[int]ChangeFunc
	nextID int

	api          API
	store        CredentialStore
	staySignedIn func() bool
	expiresIn    int
	now          func() time.Time
	logger       *slog.Logger
}

// NewSession creates a signed-out Session.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		subs:         make(map[int]ChangeFunc),
		api:          opts.API,
		store:        opts.Store,
		staySignedIn: opts.StaySignedIn,
		expiresIn:    opts.LoginExpiresInMins,
		now:          opts.Now,
		logger:       opts.Logger,
	}
	if s.staySignedIn == nil {
		s.staySignedIn = func() bool { return false }
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.logger = s.logger.With("component", "auth")
	return s
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds != nil
}

// User returns the signed-in user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return User{}, false
	}
	return s.creds.User, true
}

// AccessToken returns the current bearer token, or "" when signed out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.AccessToken
}

// OnChange registers fn and returns a function that removes it.
func (s *Session) OnChange(fn ChangeFunc) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Login signs in with a username and password.
func (s *Session) Login(ctx context.Context, username, password string) (User, error) {
	creds, err := s.api.Login(ctx, LoginRequest{
		Username:      username,
		Password:      password,
		ExpiresInMins: s.expiresIn,
	})
	if err != nil {
		return User{}, fmt.Errorf("login: %w", err)
	}
	s.establish(ctx, creds)
	s.logger.Info("logged in", "user", creds.User.Username)
	return creds.User, nil
}

// Signup registers a new account and signs in as it.
func (s *Session) Signup(ctx context.Context, req SignupRequest) (User, error) {
	creds, err := s.api.Register(ctx, req)
	if err != nil {
		return User{}, fmt.Errorf("signup: %w", err)
	}
	s.establish(ctx, creds)
	s.logger.Info("signed up", "user", creds.User.Username)
	return creds.User, nil
}

// Restore resumes a persisted session. Expired access tokens are refreshed
// once when a refresh token is available; the user is then confirmed with
// the backend. Stored credentials that cannot be restored are cleared.
func (s *Session) Restore(ctx context.Context) (User, error) {
	if s.store == nil {
		return User{}, ErrNotAuthenticated
	}

	creds, err := s.store.LoadCredentials(ctx)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			return User{}, ErrNotAuthenticated
		}
		return User{}, fmt.Errorf("load credentials: %w", err)
	}
	if creds.AccessToken == "" {
		s.discard(ctx)
		return User{}, ErrNotAuthenticated
	}

	refreshed := false
	if TokenExpired(creds.AccessToken, s.now()) {
		if creds.RefreshToken == "" || TokenExpired(creds.RefreshToken, s.now()) {
			s.discard(ctx)
			return User{}, ErrSessionExpired
		}
		if creds, err = s.refreshed(ctx, creds); err != nil {
			s.discard(ctx)
			return User{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		refreshed = true
	}

	user, err := s.api.Me(ctx, creds.AccessToken)
	if err != nil && IsUnauthorized(err) && !refreshed && creds.RefreshToken != "" {
		if creds, err = s.refreshed(ctx, creds); err == nil {
			user, err = s.api.Me(ctx, creds.AccessToken)
		}
	}
	if err != nil {
		if IsUnauthorized(err) {
			s.discard(ctx)
			return User{}, ErrSessionExpired
		}
		return User{}, fmt.Errorf("restore session: %w", err)
	}

	creds.User = user
	s.establish(ctx, creds)
	s.logger.Info("session restored", "user", user.Username)
	return user, nil
}

// Refresh rotates the token pair.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	if s.creds == nil {
		s.mu.RUnlock()
		return ErrNotAuthenticated
	}
	current := *s.creds
	s.mu.RUnlock()

	next, err := s.refreshed(ctx, current)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	s.mu.Lock()
	if s.creds == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.creds = &next
	s.mu.Unlock()

	s.persist(ctx, next)
	return nil
}

// Logout clears the session. Local state is always cleared; the returned
// error only reports a failure to remove persisted credentials.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated := s.creds != nil
	var username string
	if wasAuthenticated {
		username = s.creds.User.Username
	}
	s.creds = nil
	subs := s.snapshotLocked()
	s.mu.Unlock()

	var err error
	if s.store != nil {
		if clearErr := s.store.ClearCredentials(ctx); clearErr != nil {
			err = fmt.Errorf("clear credentials: %w", clearErr)
		}
	}

	if wasAuthenticated {
		s.logger.Info("logged out", "user", username)
		notify(subs, false)
	}
	return err
}

// SetPersistence writes or removes stored credentials to match the
// stay-signed-in preference.
func (s *Session) SetPersistence(ctx context.Context, stay bool) error {
	if s.store == nil {
		return nil
	}
	s.mu.RLock()
	var creds *Credentials
	if s.creds != nil {
		c := *s.creds
		creds = &c
	}
	s.mu.RUnlock()

	if stay && creds != nil {
		return s.store.SaveCredentials(ctx, *creds)
	}
	if !stay {
		return s.store.ClearCredentials(ctx)
	}
	return nil
}

func (s *Session) refreshed(ctx context.Context, creds Credentials) (Credentials, error) {
	pair, err := s.api.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return Credentials{}, err
	}
	creds.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		creds.RefreshToken = pair.RefreshToken
	}
	return creds, nil
}

func (s *Session) establish(ctx context.Context, creds Credentials) {
	s.mu.Lock()
	s.creds = &creds
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, creds)
	notify(subs, true)
}

func (s *Session) persist(ctx context.Context, creds Credentials) {
	if s.store == nil {
		return
	}
	var err error
	if s.staySignedIn() {
		err = s.store.SaveCredentials(ctx, creds)
	} else {
		err = s.store.ClearCredentials(ctx)
	}
	if err != nil {
		s.logger.Warn("credential persistence failed", "error", err)
	}
}

func (s *Session) discard(ctx context.Context) {
	if err := s.store.ClearCredentials(ctx); err != nil {
		s.logger.Warn("failed to clear stale credentials", "error", err)
	}
}

func (s *Session) snapshotLocked() []ChangeFunc {
	subs := make([]ChangeFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []ChangeFunc, authenticated bool) {
	for _, fn := range subs {
		fn(authenticated)
	}
}
