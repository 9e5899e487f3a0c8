// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
)

// runes builds a key message for printable input.
func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// typeInto feeds each rune of s as a separate key press.
func typeInto[M interface {
	Update(tea.Msg) (M, tea.Cmd)
}](m M, s string) M {
	for _, r := range s {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

// exec runs a command that is known not to block (no tea.Tick).
func exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}
