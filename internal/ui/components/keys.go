// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY BINDINGS
// =============================================================================

// DialogKeys are the warning dialog's bindings.
type DialogKeys struct {
	Stay   key.Binding
	Logout key.Binding
}

// DefaultDialogKeys returns the warning dialog bindings.
func DefaultDialogKeys() DialogKeys {
	return DialogKeys{
		Stay: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s/enter", "stay logged in"),
		),
		Logout: key.NewBinding(
			key.WithKeys("l", "q"),
			key.WithHelp("l/q", "logout"),
		),
	}
}

// ListKeys are the todo list's bindings.
type ListKeys struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Delete key.Binding
	New    key.Binding
	Edit   key.Binding
	Filter key.Binding
	Reload key.Binding
}

// DefaultListKeys returns the todo list bindings.
func DefaultListKeys() ListKeys {
	return ListKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("x", "toggle")),
		Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// FormKeys are shared by the login and preferences forms.
type FormKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Switch key.Binding
	Cancel key.Binding
}

// DefaultFormKeys returns the form bindings.
func DefaultFormKeys() FormKeys {
	return FormKeys{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Switch: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "login/signup")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
