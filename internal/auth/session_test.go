// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeAPI struct {
	mu         sync.Mutex
	loginErr   error
	meErr      []error
	refreshErr error
	refreshes  int
	meCalls    int
	user       User
	access     string
}

func (f *fakeAPI) Login(ctx context.Context, req LoginRequest) (Credentials, error) {
	if f.loginErr != nil {
		return Credentials{}, f.loginErr
	}
	return Credentials{User: User{ID: "1", Username: req.Username}, AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (f *fakeAPI) Register(ctx context.Context, req SignupRequest) (Credentials, error) {
	return Credentials{User: User{ID: "2", Username: req.Username, FirstName: req.FirstName}, AccessToken: "access"}, nil
}

func (f *fakeAPI) Me(ctx context.Context, token string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	f.access = token
	if len(f.meErr) > 0 {
		err := f.meErr[0]
		f.meErr = f.meErr[1:]
		if err != nil {
			return User{}, err
		}
	}
	return f.user, nil
}

func (f *fakeAPI) Refresh(ctx context.Context, refresh string) (Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return Credentials{}, f.refreshErr
	}
	return Credentials{AccessToken: "fresh-access", RefreshToken: "fresh-refresh"}, nil
}

type memStore struct {
	creds   *Credentials
	saves   int
	clears  int
	loadErr error
}

func (m *memStore) SaveCredentials(ctx context.Context, c Credentials) error {
	m.saves++
	m.creds = &c
	return nil
}

func (m *memStore) LoadCredentials(ctx context.Context) (Credentials, error) {
	if m.loadErr != nil {
		return Credentials{}, m.loadErr
	}
	if m.creds == nil {
		return Credentials{}, ErrNoCredentials
	}
	return *m.creds, nil
}

func (m *memStore) ClearCredentials(ctx context.Context) error {
	m.clears++
	m.creds = nil
	return nil
}

var unauthorized = &APIError{StatusCode: http.StatusUnauthorized, Message: "jwt expired"}

func newSession(api API, store CredentialStore, stay bool, now time.Time) *Session {
	return NewSession(SessionOptions{
		API:          api,
		Store:        store,
		StaySignedIn: func() bool { return stay },
		Now:          func() time.Time { return now },
	})
}

// =============================================================================
// TESTS
// =============================================================================

func TestSession_LoginLogout(t *testing.T) {
	store := &memStore{}
	s := newSession(&fakeAPI{}, store, true, time.Now())

	var changes []bool
	s.OnChange(func(authenticated bool) { changes = append(changes, authenticated) })

	assert.False(t, s.IsAuthenticated())
	user, err := s.Login(context.Background(), "emily", "pw")
	require.NoError(t, err)
	assert.Equal(t, "emily", user.Username)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "access", s.AccessToken())
	require.NotNil(t, store.creds, "stay signed in persists")

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())
	assert.Nil(t, store.creds)
	assert.Equal(t, []bool{true, false}, changes)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, []bool{true, false}, changes, "logout when signed out does not notify")
}

func TestSession_LoginWithoutStaySignedIn(t *testing.T) {
	store := &memStore{creds: &Credentials{AccessToken: "old"}}
	s := newSession(&fakeAPI{}, store, false, time.Now())

	_, err := s.Login(context.Background(), "emily", "pw")
	require.NoError(t, err)
	assert.Nil(t, store.creds, "credentials kept in memory only")
	assert.Equal(t, 0, store.saves)

	require.NoError(t, s.SetPersistence(context.Background(), true))
	require.NotNil(t, store.creds)
	assert.Equal(t, "access", store.creds.AccessToken)

	require.NoError(t, s.SetPersistence(context.Background(), false))
	assert.Nil(t, store.creds)
}

func TestSession_LoginFailure(t *testing.T) {
	s := newSession(&fakeAPI{loginErr: unauthorized}, nil, false, time.Now())
	_, err := s.Login(context.Background(), "emily", "bad")
	assert.True(t, IsUnauthorized(err))
	assert.False(t, s.IsAuthenticated())
}

func TestSession_Signup(t *testing.T) {
	s := newSession(&fakeAPI{}, nil, false, time.Now())
	user, err := s.Signup(context.Background(), SignupRequest{Username: "new", FirstName: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.DisplayName())
	assert.True(t, s.IsAuthenticated())
}

func TestSession_RestoreNothingStored(t *testing.T) {
	s := newSession(&fakeAPI{}, &memStore{}, true, time.Now())
	_, err := s.Restore(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	s = newSession(&fakeAPI{}, nil, true, time.Now())
	_, err = s.Restore(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSession_RestoreValid(t *testing.T) {
	now := time.Now()
	access := jwtWithExp(now.Add(time.Hour))
	store := &memStore{creds: &Credentials{AccessToken: access, RefreshToken: "r"}}
	api := &fakeAPI{user: User{ID: "1", Username: "emily"}}
	s := newSession(api, store, true, now)

	changed := false
	s.OnChange(func(bool) { changed = true })

	user, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emily", user.Username)
	assert.Equal(t, access, api.access)
	assert.Equal(t, 0, api.refreshes)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, changed)
}

func TestSession_RestoreExpiredRefreshesOnce(t *testing.T) {
	now := time.Now()
	store := &memStore{creds: &Credentials{AccessToken: jwtWithExp(now.Add(-time.Minute)), RefreshToken: "r"}}
	api := &fakeAPI{user: User{ID: "1", Username: "emily"}}
	s := newSession(api, store, true, now)

	_, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.refreshes)
	assert.Equal(t, "fresh-access", api.access)
	assert.Equal(t, "fresh-access", s.AccessToken())
	assert.Equal(t, "fresh-refresh", store.creds.RefreshToken)
}

func TestSession_RestoreExpiredWithoutRefresh(t *testing.T) {
	now := time.Now()
	store := &memStore{creds: &Credentials{AccessToken: jwtWithExp(now.Add(-time.Minute))}}
	api := &fakeAPI{}
	s := newSession(api, store, true, now)

	_, err := s.Restore(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Nil(t, store.creds, "stale credentials cleared")
	assert.Equal(t, 0, api.meCalls)
}

func TestSession_RestoreRefreshFails(t *testing.T) {
	now := time.Now()
	store := &memStore{creds: &Credentials{AccessToken: jwtWithExp(now.Add(-time.Minute)), RefreshToken: "r"}}
	api := &fakeAPI{refreshErr: unauthorized}
	s := newSession(api, store, true, now)

	_, err := s.Restore(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, api.refreshes)
	assert.Nil(t, store.creds)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_RestoreUnauthorizedRetriesWithRefresh(t *testing.T) {
	store := &memStore{creds: &Credentials{AccessToken: "opaque", RefreshToken: "r"}}
	api := &fakeAPI{user: User{Username: "emily"}, meErr: []error{unauthorized, nil}}
	s := newSession(api, store, true, time.Now())

	_, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.refreshes)
	assert.Equal(t, 2, api.meCalls)
}

func TestSession_RestoreUnauthorizedTwice(t *testing.T) {
	store := &memStore{creds: &Credentials{AccessToken: "opaque", RefreshToken: "r"}}
	api := &fakeAPI{meErr: []error{unauthorized, unauthorized}}
	s := newSession(api, store, true, time.Now())

	_, err := s.Restore(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, api.refreshes, "only one refresh attempt")
	assert.Nil(t, store.creds)
}

func TestSession_RestoreNetworkErrorKeepsCredentials(t *testing.T) {
	store := &memStore{creds: &Credentials{AccessToken: "opaque"}}
	api := &fakeAPI{meErr: []error{errors.New("connection refused")}}
	s := newSession(api, store, true, time.Now())

	_, err := s.Restore(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.NotNil(t, store.creds)
}

func TestSession_Refresh(t *testing.T) {
	store := &memStore{}
	s := newSession(&fakeAPI{}, store, true, time.Now())

	assert.ErrorIs(t, s.Refresh(context.Background()), ErrNotAuthenticated)

	_, err := s.Login(context.Background(), "emily", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "fresh-access", s.AccessToken())
	assert.Equal(t, "fresh-access", store.creds.AccessToken)
	user, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, "emily", user.Username, "user survives refresh")
}
