// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
)

// DefaultWatchDebounce is how long Watch waits after the last file event
// before reloading.
const DefaultWatchDebounce = 200 * time.Millisecond

// ChangeFunc is called after the stored config changes.
type ChangeFunc func(old, new Config)

// Store holds the current Config, persists it and notifies subscribers.
// It implements activity.ConfigSource.
type Store struct {
	mu     sync.RWMutex
	path   string
	cfg    Config
	subs   map[int]ChangeFunc
	nextID int
	logger *slog.Logger
}

// NewStore wraps an already loaded config.
func NewStore(path string, cfg *Config, logger *slog.Logger) *Store {
	if cfg == nil {
		cfg = Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		path:   path,
		cfg:    *cfg,
		subs:   make(map[int]ChangeFunc),
		logger: logger.With("component", "config"),
	}
}

// Open loads path and returns a Store for it.
func Open(path string, logger *slog.Logger) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(path, cfg, logger), nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Preferences returns the current user preferences.
func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Preferences
}

// ActivityConfig returns the current auto-logout settings.
func (s *Store) ActivityConfig() activity.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Preferences.Activity
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn ChangeFunc) func() {
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

// Update applies fn to a copy of the config, validates and saves it, then
// swaps it in and notifies subscribers. Nothing changes if any step fails.
// Auto-logout ranges are only enforced when fn changes those values, so a
// hand-edited file does not block unrelated settings.
func (s *Store) Update(fn func(*Config) error) error {
	s.mu.Lock()
	next := s.cfg
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := next.validate(next.Preferences.Activity != s.cfg.Preferences.Activity); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.path != "" {
		if err := Save(&next, s.path); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	old := s.cfg
	s.cfg = next
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(subs, old, next)
	return nil
}

// Set updates a single key, see Config.Set.
func (s *Store) Set(key, value string) error {
	return s.Update(func(c *Config) error {
		return c.Set(key, value)
	})
}

// SetPreferences replaces the preferences section.
func (s *Store) SetPreferences(p Preferences) error {
	return s.Update(func(c *Config) error {
		c.Preferences = p
		return nil
	})
}

// Reload re-reads the file. Subscribers are notified only when the result
// differs from the current config.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.cfg
	if old == *cfg {
		s.mu.Unlock()
		return nil
	}
	s.cfg = *cfg
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("config reloaded", "path", s.path, "activity", cfg.Preferences.Activity.String())
	s.notify(subs, old, *cfg)
	return nil
}

// Watch reloads the config whenever the file changes on disk, until ctx is
// cancelled. Invalid edits are logged and the previous config is kept.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go s.watchLoop(ctx, watcher, debounce)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration) {
	defer watcher.Close()

	target := filepath.Clean(s.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := s.Reload(); err != nil {
					s.logger.Warn("config reload failed, keeping previous", "path", s.path, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (s *Store) snapshotLocked() []ChangeFunc {
	subs := make([]ChangeFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) notify(subs []ChangeFunc, old, next Config) {
	for _, fn := range subs {
		fn(old, next)
	}
}
