// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
	"github.com/jeranaias/taskmaster-tui/internal/session"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows the auto-logout status, a transient message and key hints.
type StatusBar struct {
	Width     int
	Session   session.Status
	Message   string
	Shortcuts []key.Binding
	theme     *styles.Theme
}

// NewStatusBar creates a new status bar
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetSession updates the displayed auto-logout status
func (s *StatusBar) SetSession(st session.Status) {
	s.Session = st
}

// SetMessage sets a transient message shown next to the session status.
func (s *StatusBar) SetMessage(msg string) {
	s.Message = msg
}

// SetShortcuts replaces the key hints.
func (s *StatusBar) SetShortcuts(bindings ...key.Binding) {
	s.Shortcuts = bindings
}

// View renders the status bar. Hints are dropped first on narrow terminals.
func (s *StatusBar) View() string {
	left := s.renderSession()
	if s.Message != "" {
		left += s.separator() + s.Message
	}

	right := ""
	if s.Width >= 60 {
		right = s.renderShortcuts()
	}

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = 1
	}

	return s.theme.StatusBar.
		Width(s.Width).
		MaxHeight(1).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderSession() string {
	summary := s.Session.Summary()
	switch s.Session.Phase {
	case activity.PhaseWarning, activity.PhaseExpired:
		return s.theme.StatusWarning.Render(styles.StatusIndicators.Warning + " " + summary)
	case activity.PhaseIdle:
		return s.theme.StatusSession.Render(styles.StatusIndicators.Active + " " + summary)
	default:
		return s.theme.ShortcutDesc.Render(summary)
	}
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, b := range s.Shortcuts {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (s *StatusBar) separator() string {
	return lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
}
