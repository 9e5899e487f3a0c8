// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusSession lipgloss.Style
	StatusWarning lipgloss.Style
	ShortcutKey   lipgloss.Style
	ShortcutDesc  lipgloss.Style

	// ==========================================================================
	// TODO LIST STYLES
	// ==========================================================================

	TodoItem      lipgloss.Style
	TodoSelected  lipgloss.Style
	TodoCompleted lipgloss.Style
	TodoEmpty     lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormBox        lipgloss.Style
	FormTitle      lipgloss.Style
	FormLabel      lipgloss.Style
	FormLabelFocus lipgloss.Style
	FormHint       lipgloss.Style
	FormError      lipgloss.Style

	// ==========================================================================
	// DIALOG STYLES
	// ==========================================================================

	DialogBox          lipgloss.Style
	DialogTitle        lipgloss.Style
	DialogText         lipgloss.Style
	DialogCountdown    lipgloss.Style
	DialogButton       lipgloss.Style
	DialogButtonDanger lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderUser = lipgloss.NewStyle().
		Foreground(Cyan)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusSession = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StatusWarning = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Todo list
	t.TodoItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.TodoSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Background(SelectionBg).
		PaddingLeft(2)

	t.TodoCompleted = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	t.TodoEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		PaddingLeft(2)

	// Forms
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.FormTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FormLabelFocus = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)

	// Dialogs
	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Background(Surface).
		Padding(1, 3)

	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.DialogText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.DialogCountdown = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.DialogButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Emerald).
		Padding(0, 2)

	t.DialogButtonDanger = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Rose).
		Padding(0, 2)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
