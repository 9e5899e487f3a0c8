// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/activity"
	"github.com/jeranaias/taskmaster-tui/internal/config"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
	"github.com/jeranaias/taskmaster-tui/internal/util"
)

// =============================================================================
// PREFERENCES FORM
// =============================================================================

// SavePreferencesMsg carries validated preferences to be persisted.
type SavePreferencesMsg struct {
	Preferences config.Preferences
}

const (
	prefEnabled = iota
	prefMinutes
	prefSeconds
	prefStaySignedIn
	prefCount
)

// PrefsForm edits the auto-logout settings and "stay signed in".
type PrefsForm struct {
	saved   config.Preferences
	enabled bool
	stay    bool
	minutes textinput.Model
	seconds textinput.Model

	focus  int
	err    string
	notice string

	keys  FormKeys
	theme *styles.Theme
}

// NewPrefsForm creates a form showing p.
func NewPrefsForm(theme *styles.Theme, p config.Preferences) PrefsForm {
	numeric := func(width int) textinput.Model {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = width
		in.Width = width + 1
		in.Validate = func(s string) error {
			for _, r := range s {
				if r < '0' || r > '9' {
					return strconv.ErrSyntax
				}
			}
			return nil
		}
		return in
	}

	f := PrefsForm{
		minutes: numeric(3),
		seconds: numeric(3),
		keys:    DefaultFormKeys(),
		theme:   theme,
	}
	f.SetPreferences(p)
	return f
}

// SetPreferences loads p into the form, discarding unsaved edits.
func (f *PrefsForm) SetPreferences(p config.Preferences) {
	f.saved = p
	f.enabled = p.Activity.Enabled
	f.stay = p.StaySignedIn
	f.minutes.SetValue(util.IntToString(p.Activity.InactivityTimeoutMinutes))
	f.seconds.SetValue(util.IntToString(p.Activity.WarningTimeoutSeconds))
	f.err = ""
	f.setFocus(f.focus)
}

// Saved marks the last submission as persisted.
func (f *PrefsForm) Saved(p config.Preferences) {
	f.SetPreferences(p)
	f.notice = "Preferences saved"
}

// SetError shows err under the form. Nil clears it.
func (f *PrefsForm) SetError(err error) {
	f.notice = ""
	if err == nil {
		f.err = ""
		return
	}
	f.err = err.Error()
}

// Editing reports whether a text field has focus, so single-letter
// shortcuts should go to the form.
func (f PrefsForm) Editing() bool {
	return f.focus == prefMinutes || f.focus == prefSeconds
}

func (f *PrefsForm) setFocus(i int) tea.Cmd {
	f.focus = i
	f.minutes.Blur()
	f.seconds.Blur()
	switch i {
	case prefMinutes:
		return f.minutes.Focus()
	case prefSeconds:
		return f.seconds.Focus()
	}
	return nil
}

// Value parses the form. Range checks are left to Validate.
func (f PrefsForm) Value() (config.Preferences, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(f.minutes.Value()))
	if err != nil {
		return config.Preferences{}, config.ValidationError{
			Field: "preferences.activity.inactivity_timeout_minutes", Message: "must be a number",
		}
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(f.seconds.Value()))
	if err != nil {
		return config.Preferences{}, config.ValidationError{
			Field: "preferences.activity.warning_timeout_seconds", Message: "must be a number",
		}
	}
	return config.Preferences{
		StaySignedIn: f.stay,
		Activity: activity.Config{
			Enabled:                  f.enabled,
			InactivityTimeoutMinutes: minutes,
			WarningTimeoutSeconds:    seconds,
		},
	}, nil
}

// Update handles focus, toggles and submission.
func (f PrefsForm) Update(msg tea.Msg) (PrefsForm, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateInput(msg)
	}

	switch {
	case key.Matches(km, f.keys.Next):
		cmd := f.setFocus((f.focus + 1) % prefCount)
		return f, cmd
	case key.Matches(km, f.keys.Prev):
		cmd := f.setFocus((f.focus - 1 + prefCount) % prefCount)
		return f, cmd
	case key.Matches(km, f.keys.Cancel):
		f.SetPreferences(f.saved)
		f.notice = ""
		return f, nil
	case key.Matches(km, f.keys.Submit):
		return f.submit()
	case km.String() == " " && !f.Editing():
		f.notice = ""
		if f.focus == prefEnabled {
			f.enabled = !f.enabled
		} else {
			f.stay = !f.stay
		}
		return f, nil
	}

	return f.updateInput(msg)
}

func (f PrefsForm) updateInput(msg tea.Msg) (PrefsForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case prefMinutes:
		f.minutes, cmd = f.minutes.Update(msg)
	case prefSeconds:
		f.seconds, cmd = f.seconds.Update(msg)
	}
	return f, cmd
}

func (f PrefsForm) submit() (PrefsForm, tea.Cmd) {
	p, err := f.Value()
	if err != nil {
		f.SetError(err)
		return f, nil
	}
	if errs := config.ValidateActivity(p.Activity); len(errs) > 0 {
		f.SetError(errs[0])
		return f, nil
	}
	f.err = ""
	return f, func() tea.Msg { return SavePreferencesMsg{Preferences: p} }
}

// View renders the form box.
func (f PrefsForm) View() string {
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	label := func(i int, text string) string {
		style := f.theme.FormLabel
		if i == f.focus {
			style = f.theme.FormLabelFocus
		}
		return style.Width(30).Render(text)
	}

	lines := []string{
		f.theme.FormTitle.Render("Preferences"),
		label(prefEnabled, "Auto-logout when inactive") + " " + check(f.enabled),
		label(prefMinutes, "Inactivity timeout (minutes)") + " " + f.minutes.View() +
			f.theme.FormHint.Render(" "+util.IntToString(config.MinInactivityMinutes)+"-"+util.IntToString(config.MaxInactivityMinutes)),
		label(prefSeconds, "Warning countdown (seconds)") + " " + f.seconds.View() +
			f.theme.FormHint.Render(" "+util.IntToString(config.MinWarningSeconds)+"-"+util.IntToString(config.MaxWarningSeconds)),
		label(prefStaySignedIn, "Stay signed in") + " " + check(f.stay),
		"",
	}

	switch {
	case f.err != "":
		lines = append(lines, f.theme.FormError.Render(styles.StatusIndicators.Error+" "+f.err))
	case f.notice != "":
		lines = append(lines, styles.RenderSuccess(f.notice))
	default:
		lines = append(lines, f.theme.FormHint.Render("space: toggle  enter: save  esc: revert"))
	}

	return f.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
