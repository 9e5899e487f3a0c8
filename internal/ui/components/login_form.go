// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN / SIGNUP FORM
// =============================================================================

// LoginSubmitMsg asks the root model to sign in.
type LoginSubmitMsg struct {
	Username string
	Password string
}

// SignupSubmitMsg asks the root model to register a new account.
type SignupSubmitMsg struct {
	Request auth.SignupRequest
}

type formField struct {
	label    string
	required bool
	input    textinput.Model
}

const (
	fieldUsername = iota
	fieldPassword
	fieldEmail
	fieldFirstName
	fieldLastName
)

// LoginForm collects credentials. In signup mode it also asks for email and
// name.
type LoginForm struct {
	signup bool
	fields []formField
	focus  int
	busy   bool
	err    string

	keys  FormKeys
	theme *styles.Theme
	width int
}

// NewLoginForm creates a form in login mode with the username focused.
func NewLoginForm(theme *styles.Theme) LoginForm {
	newInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		in.Prompt = ""
		in.Width = 32
		return in
	}

	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	f := LoginForm{
		fields: []formField{
			{label: "Username", required: true, input: newInput("username")},
			{label: "Password", required: true, input: password},
			{label: "Email", required: true, input: newInput("you@example.com")},
			{label: "First name", input: newInput("optional")},
			{label: "Last name", input: newInput("optional")},
		},
		keys:  DefaultFormKeys(),
		theme: theme,
	}
	f.fields[fieldUsername].input.Focus()
	return f
}

// SetWidth sets the available width.
func (f *LoginForm) SetWidth(width int) {
	f.width = width
}

// Signup reports whether the form is in signup mode.
func (f LoginForm) Signup() bool { return f.signup }

// SetBusy disables submission while a request is in flight.
func (f *LoginForm) SetBusy(busy bool) {
	f.busy = busy
	if busy {
		f.err = ""
	}
}

// SetError shows err under the form. Nil clears it.
func (f *LoginForm) SetError(err error) {
	f.busy = false
	if err == nil {
		f.err = ""
		return
	}
	f.err = err.Error()
}

// Reset clears every field and returns to login mode.
func (f *LoginForm) Reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
	f.signup = false
	f.busy = false
	f.err = ""
	f.setFocus(fieldUsername)
}

// Init starts the cursor blink.
func (f LoginForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f LoginForm) active() int {
	if f.signup {
		return len(f.fields)
	}
	return fieldPassword + 1
}

func (f *LoginForm) setFocus(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for j := range f.fields {
		if j == i {
			cmd = f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	return cmd
}

// Update handles focus movement, mode switching and submission.
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
		return f, cmd
	}

	switch {
	case key.Matches(km, f.keys.Switch):
		f.signup = !f.signup
		f.err = ""
		cmd := f.setFocus(fieldUsername)
		return f, cmd
	case key.Matches(km, f.keys.Next):
		cmd := f.setFocus((f.focus + 1) % f.active())
		return f, cmd
	case key.Matches(km, f.keys.Prev):
		cmd := f.setFocus((f.focus - 1 + f.active()) % f.active())
		return f, cmd
	case key.Matches(km, f.keys.Submit):
		if f.focus < f.active()-1 {
			cmd := f.setFocus(f.focus + 1)
			return f, cmd
		}
		return f.submit()
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f LoginForm) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f LoginForm) submit() (LoginForm, tea.Cmd) {
	if f.busy {
		return f, nil
	}
	for i := 0; i < f.active(); i++ {
		if f.fields[i].required && f.value(i) == "" {
			f.err = f.fields[i].label + " is required"
			cmd := f.setFocus(i)
			return f, cmd
		}
	}

	f.busy = true
	f.err = ""
	if !f.signup {
		msg := LoginSubmitMsg{
			Username: f.value(fieldUsername),
			Password: f.fields[fieldPassword].input.Value(),
		}
		return f, func() tea.Msg { return msg }
	}

	msg := SignupSubmitMsg{Request: auth.SignupRequest{
		Username:  f.value(fieldUsername),
		Password:  f.fields[fieldPassword].input.Value(),
		Email:     f.value(fieldEmail),
		FirstName: f.value(fieldFirstName),
		LastName:  f.value(fieldLastName),
	}}
	return f, func() tea.Msg { return msg }
}

// View renders the form box.
func (f LoginForm) View() string {
	title := "Sign in to TaskMaster"
	switchHint := "ctrl+n: create an account"
	if f.signup {
		title = "Create a TaskMaster account"
		switchHint = "ctrl+n: back to sign in"
	}

	lines := []string{f.theme.FormTitle.Render(title)}
	for i := 0; i < f.active(); i++ {
		label := f.theme.FormLabel
		if i == f.focus {
			label = f.theme.FormLabelFocus
		}
		lines = append(lines,
			label.Width(12).Render(f.fields[i].label)+" "+f.fields[i].input.View())
	}

	lines = append(lines, "")
	switch {
	case f.busy:
		lines = append(lines, f.theme.FormHint.Render("Working..."))
	case f.err != "":
		lines = append(lines, f.theme.FormError.Render(styles.StatusIndicators.Error+" "+f.err))
	default:
		lines = append(lines, f.theme.FormHint.Render("enter: submit  tab: next field  "+switchHint))
	}

	return f.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
