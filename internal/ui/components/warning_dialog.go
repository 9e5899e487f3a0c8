// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
	"github.com/jeranaias/taskmaster-tui/internal/util"
)

// =============================================================================
// SESSION TIMEOUT WARNING DIALOG
// =============================================================================

// CountdownInterval is how often the dialog counter ticks.
const CountdownInterval = time.Second

// StayLoggedInMsg is emitted when the user chooses to stay logged in.
type StayLoggedInMsg struct{}

// ForceLogoutMsg is emitted when the user chooses to log out or the
// countdown reaches zero.
type ForceLogoutMsg struct {
	// Countdown is true when the counter ran out rather than a key press.
	Countdown bool
}

// WarningTickMsg advances the countdown. Seq ties a tick to the Show call
// that scheduled it so ticks from an earlier warning are dropped.
type WarningTickMsg struct {
	Seq int
}

// WarningDialog is the modal shown while the tracker is in its warning
// phase. Its counter is for display; the tracker's logout timer decides.
type WarningDialog struct {
	visible   bool
	remaining int
	total     int
	seq       int

	keys  DialogKeys
	theme *styles.Theme

	width  int
	height int
}

// NewWarningDialog creates a hidden dialog.
func NewWarningDialog(theme *styles.Theme) WarningDialog {
	return WarningDialog{
		keys:  DefaultDialogKeys(),
		theme: theme,
	}
}

// SetSize sets the area the dialog is centered in.
func (d *WarningDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Show displays the dialog with a counter of timeout rounded up to whole
// seconds and returns the first tick.
func (d *WarningDialog) Show(timeout time.Duration) tea.Cmd {
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	d.visible = true
	d.remaining = secs
	d.total = secs
	d.seq++
	return d.tick()
}

// Hide closes the dialog and invalidates outstanding ticks.
func (d *WarningDialog) Hide() {
	d.visible = false
	d.seq++
}

// Visible reports whether the dialog is open.
func (d WarningDialog) Visible() bool {
	return d.visible
}

// Remaining returns the displayed countdown.
func (d WarningDialog) Remaining() time.Duration {
	return time.Duration(d.remaining) * time.Second
}

func (d WarningDialog) tick() tea.Cmd {
	seq := d.seq
	return tea.Tick(CountdownInterval, func(time.Time) tea.Msg {
		return WarningTickMsg{Seq: seq}
	})
}

// Update handles countdown ticks and the dialog's keys. Other messages are
// ignored; callers route input elsewhere while the dialog is hidden.
func (d WarningDialog) Update(msg tea.Msg) (WarningDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.SetSize(msg.Width, msg.Height)

	case WarningTickMsg:
		if msg.Seq != d.seq {
			return d, nil
		}
		d.remaining--
		if d.remaining <= 0 {
			d.remaining = 0
			return d, func() tea.Msg { return ForceLogoutMsg{Countdown: true} }
		}
		return d, d.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keys.Stay):
			return d, func() tea.Msg { return StayLoggedInMsg{} }
		case key.Matches(msg, d.keys.Logout):
			return d, func() tea.Msg { return ForceLogoutMsg{} }
		}
	}

	return d, nil
}

// View renders the dialog centered in its area, or "" when hidden.
func (d WarningDialog) View() string {
	if !d.visible {
		return ""
	}

	width := d.width
	if width == 0 {
		width = 60
	}
	height := d.height
	if height == 0 {
		height = 24
	}
	boxWidth := width - 8
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > 60 {
		boxWidth = 60
	}
	inner := boxWidth - 8

	var percent float64
	if d.total > 0 {
		percent = float64(d.remaining) * 100 / float64(d.total)
	}

	center := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center)
	parts := []string{
		d.theme.DialogTitle.Render(styles.StatusIndicators.Warning + " Session Timeout Warning"),
		"",
		center.Render(d.theme.DialogText.Render("You will be logged out due to inactivity in")),
		center.Render(d.theme.DialogCountdown.Render(formatTimeRemaining(d.Remaining()))),
		center.Render(styles.RenderProgressBar(inner-10, percent)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			d.theme.DialogButton.Render("Stay logged in (s)"),
			"  ",
			d.theme.DialogButtonDanger.Render("Logout (l)"),
		),
	}

	box := d.theme.DialogBox.
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, parts...))

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// formatTimeRemaining formats a duration as M:SS.
func formatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return util.IntToString(total/60) + ":" + util.PadLeft(total%60, 2)
}
