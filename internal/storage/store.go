// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/taskmaster-tui/internal/auth"
)

// ErrNoCredentials is returned by LoadCredentials when nothing is stored.
var ErrNoCredentials = auth.ErrNoCredentials

// ErrClosed is returned after Close.
var ErrClosed = errors.New("storage closed")

// Store is the local SQLite database holding persisted credentials and the
// session event log. It implements auth.CredentialStore.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Credentials live here, keep the file private.
	_ = os.Chmod(path, 0600)
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprint(SchemaVersion),
	)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// SaveCredentials replaces the stored credentials.
func (s *Store) SaveCredentials(ctx context.Context, creds auth.Credentials) error {
	if s.db == nil {
		return ErrClosed
	}
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, user_json, token, refresh_token, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_json = excluded.user_json,
			token = excluded.token,
			refresh_token = excluded.refresh_token,
			saved_at = excluded.saved_at
	`, string(userJSON), creds.AccessToken, creds.RefreshToken, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// LoadCredentials returns the stored credentials or ErrNoCredentials.
func (s *Store) LoadCredentials(ctx context.Context) (auth.Credentials, error) {
	if s.db == nil {
		return auth.Credentials{}, ErrClosed
	}
	var userJSON, token, refresh string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_json, token, refresh_token FROM credentials WHERE id = 1`,
	).Scan(&userJSON, &token, &refresh)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}

	creds := auth.Credentials{AccessToken: token, RefreshToken: refresh}
	if err := json.Unmarshal([]byte(userJSON), &creds.User); err != nil {
		return auth.Credentials{}, fmt.Errorf("decode user: %w", err)
	}
	return creds, nil
}

// ClearCredentials removes any stored credentials.
func (s *Store) ClearCredentials(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// =============================================================================
// SESSION EVENTS
// =============================================================================

// EventKind classifies a session event.
type EventKind string

const (
	EventLogin   EventKind = "login"
	EventWarning EventKind = "warning"
	EventResume  EventKind = "resume"
	EventStay    EventKind = "stay"
	EventLogout  EventKind = "logout"
)

// Event is one entry in the session event log.
type Event struct {
	ID       string    `json:"id" yaml:"id"`
	Kind     EventKind `json:"kind" yaml:"kind"`
	Reason   string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Username string    `json:"username,omitempty" yaml:"username,omitempty"`
	At       time.Time `json:"at" yaml:"at"`
}

// RecordEvent appends ev to the log. ID and At are filled when empty.
func (s *Store) RecordEvent(ctx context.Context, ev Event) (Event, error) {
	if s.db == nil {
		return Event{}, ErrClosed
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_events (id, kind, reason, username, at) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), ev.Reason, ev.Username, ev.At.UnixMilli(),
	)
	if err != nil {
		return Event{}, fmt.Errorf("record event: %w", err)
	}
	return ev, nil
}

// RecentEvents returns up to limit events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, reason, username, at FROM session_events
		ORDER BY at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var kind string
		var at int64
		if err := rows.Scan(&ev.ID, &kind, &ev.Reason, &ev.Username, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = EventKind(kind)
		ev.At = time.UnixMilli(at)
		events = append(events, ev)
	}
	return events, rows.Err()
}
