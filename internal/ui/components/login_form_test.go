// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

func TestLoginFormSubmitsCredentials(t *testing.T) {
	f := NewLoginForm(styles.NewTheme())

	f = typeInto(f, "emilys")
	f, _ = f.Update(keyOf(tea.KeyTab))
	f = typeInto(f, "emilyspass")

	f, cmd := f.Update(keyOf(tea.KeyEnter))
	assert.Equal(t, LoginSubmitMsg{Username: "emilys", Password: "emilyspass"}, exec(cmd))
	assert.Contains(t, f.View(), "Working...")
	assert.NotContains(t, f.View(), "emilyspass", "password is masked")
}

func TestLoginFormEnterAdvancesFocus(t *testing.T) {
	f := NewLoginForm(styles.NewTheme())
	f = typeInto(f, "emilys")

	// The returned command is the cursor blink; it is not run here.
	f, _ = f.Update(keyOf(tea.KeyEnter))
	assert.Equal(t, fieldPassword, f.focus)
	assert.NotContains(t, f.View(), "Working...")
}

func TestLoginFormRequiresFields(t *testing.T) {
	f := NewLoginForm(styles.NewTheme())
	f, _ = f.Update(keyOf(tea.KeyTab))

	f, _ = f.Update(keyOf(tea.KeyEnter))
	assert.False(t, f.busy)
	assert.Contains(t, f.View(), "Username is required")
	assert.Equal(t, fieldUsername, f.focus)
}

func TestLoginFormIgnoresSubmitWhileBusy(t *testing.T) {
	f := NewLoginForm(styles.NewTheme())
	f = typeInto(f, "emilys")
	f, _ = f.Update(keyOf(tea.KeyTab))
	f = typeInto(f, "pw")
	f.SetBusy(true)

	_, cmd := f.Update(keyOf(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func TestLoginFormSignup(t *testing.T) {
	f := NewLoginForm(styles.NewTheme())
	f, _ = f.Update(keyOf(tea.KeyCtrlN))
	require.True(t, f.Signup())
	assert.Contains(t, f.View(), "Create a TaskMaster account")

	for _, value := range []string{"newbie", "secret", "new@example.com", "new", "user"} {
		f = typeInto(f, value)
		f, _ = f.Update(keyOf(tea.KeyTab))
	}
	// Tab wrapped back to the first field; move to the last one to submit.
	f, _ = f.Update(keyOf(tea.KeyShiftTab))

	_, cmd := f.Update(keyOf(tea.KeyEnter))
	assert.Equal(t, SignupSubmitMsg{Request: auth.SignupRequest{
		Username:  "newbie",
		Password:  "secret",
		Email:     "new@example.com",
		FirstName: "new",
		LastName:  "user",
	}}, exec(cmd))
}

func TestLoginFormErrorAndReset(t *testing.T) {
	f := NewLoginForm(styles.NewTheme())
	f = typeInto(f, "emilys")
	f.SetError(errors.New("invalid credentials"))
	assert.Contains(t, f.View(), "invalid credentials")

	f.Reset()
	assert.NotContains(t, f.View(), "invalid credentials")
	assert.Empty(t, f.value(fieldUsername))
	assert.False(t, f.Signup())
}
