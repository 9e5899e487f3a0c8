// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_ImplementsCredentialStore(t *testing.T) {
	var _ auth.CredentialStore = (*Store)(nil)
}

func TestStore_Credentials(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.LoadCredentials(ctx)
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.ErrorIs(t, err, auth.ErrNoCredentials)

	creds := auth.Credentials{
		User:         auth.User{ID: "65f0", Username: "emily", FirstName: "Emily"},
		AccessToken:  "a1",
		RefreshToken: "r1",
	}
	require.NoError(t, s.SaveCredentials(ctx, creds))

	got, err := s.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	creds.AccessToken = "a2"
	require.NoError(t, s.SaveCredentials(ctx, creds))
	got, err = s.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken, "save replaces")

	require.NoError(t, s.ClearCredentials(ctx))
	_, err = s.LoadCredentials(ctx)
	assert.ErrorIs(t, err, ErrNoCredentials)
	require.NoError(t, s.ClearCredentials(ctx), "clearing twice is fine")
}

func TestStore_CredentialsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveCredentials(ctx, auth.Credentials{User: auth.User{Username: "kim"}, AccessToken: "t"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LoadCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kim", got.User.Username)
}

func TestStore_Events(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, kind := range []EventKind{EventLogin, EventWarning, EventLogout} {
		_, err := s.RecordEvent(ctx, Event{Kind: kind, Username: "emily", At: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	events, err := s.RecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventLogout, events[0].Kind)
	assert.Equal(t, EventWarning, events[1].Kind)
	assert.True(t, base.Add(2*time.Minute).Equal(events[0].At))
	assert.NotEmpty(t, events[0].ID)

	all, err := s.RecentEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_RecordEventFillsDefaults(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ev, err := s.RecordEvent(context.Background(), Event{Kind: EventLogout, Reason: "inactivity"})
	require.NoError(t, err)
	assert.Len(t, ev.ID, 36)
	assert.True(t, fixed.Equal(ev.At))
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Close(), ErrClosed)
	_, err = s.LoadCredentials(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.RecordEvent(context.Background(), Event{Kind: EventLogin})
	assert.ErrorIs(t, err, ErrClosed)
}
