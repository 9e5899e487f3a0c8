// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
	"github.com/jeranaias/taskmaster-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Tab identifies a top-level view.
type Tab int

const (
	TabTodos Tab = iota
	TabPreferences
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabTodos, TabPreferences}

// String returns the display string for the tab.
func (t Tab) String() string {
	switch t {
	case TabTodos:
		return "Todos"
	case TabPreferences:
		return "Preferences"
	default:
		return "Unknown"
	}
}

// Next returns the tab after t, wrapping around.
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

// Header is the single-line title bar: brand, view tabs, signed-in user.
type Header struct {
	Title  string
	User   string // display name, empty when signed out
	Active Tab
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a new Header component with default values
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "TaskMaster",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetUser updates the signed-in user's display name
func (h *Header) SetUser(name string) {
	h.User = name
}

// SetActive selects the highlighted tab
func (h *Header) SetActive(tab Tab) {
	h.Active = tab
}

// View renders the header. Tabs are hidden while signed out.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	left := h.theme.HeaderBrand.Render(h.Title)
	if h.User != "" {
		tabs := make([]string, 0, len(Tabs))
		for _, tab := range Tabs {
			if tab == h.Active {
				tabs = append(tabs, h.theme.TabActive.Render(tab.String()))
			} else {
				tabs = append(tabs, h.theme.Tab.Render(tab.String()))
			}
		}
		left += "  " + strings.Join(tabs, " ")
	}

	right := ""
	if h.User != "" {
		// Leave room for the brand and tabs before truncating the name.
		room := width - lipgloss.Width(left) - 4
		if room > 0 {
			right = h.theme.HeaderUser.Render(util.Truncate(h.User, room))
		}
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return h.theme.Header.
		Width(width).
		Render(left + strings.Repeat(" ", gap) + right)
}
