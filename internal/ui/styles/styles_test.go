// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

// =============================================================================
// PROGRESS BAR TESTS
// =============================================================================

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
		want    string
	}{
		{"zero width", 0, 50, ""},
		{"empty", 10, 0, "----------"},
		{"full", 10, 100, "##########"},
		{"half", 10, 50, "#####-----"},
		{"clamped high", 4, 150, "####"},
		{"clamped low", 4, -10, "----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgressBar(tt.width, tt.percent)
			if got != tt.want {
				t.Errorf("RenderProgressBar(%d, %v) = %q, want %q", tt.width, tt.percent, got, tt.want)
			}
		})
	}
}

func TestRenderProgressBarKeepsWidth(t *testing.T) {
	for p := 0.0; p <= 100; p += 7.5 {
		if got := RenderProgressBar(13, p); len(got) != 13 {
			t.Errorf("RenderProgressBar(13, %v) has length %d", p, len(got))
		}
	}
}

// =============================================================================
// STATUS RENDERING TESTS
// =============================================================================

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		name      string
		rendered  string
		indicator string
	}{
		{"success", RenderSuccess("saved"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
		{"info", RenderInfo("note"), StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.rendered, tt.indicator) {
				t.Errorf("rendered %q should contain %q", tt.rendered, tt.indicator)
			}
		})
	}
}

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewThemeRendersStyles(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	for name, rendered := range map[string]string{
		"Header":      theme.Header.Render("x"),
		"StatusBar":   theme.StatusBar.Render("x"),
		"TodoItem":    theme.TodoItem.Render("x"),
		"FormBox":     theme.FormBox.Render("x"),
		"DialogBox":   theme.DialogBox.Render("x"),
		"DialogTitle": theme.DialogTitle.Render("x"),
	} {
		if !strings.Contains(rendered, "x") {
			t.Errorf("%s style lost its content: %q", name, rendered)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme()
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}
