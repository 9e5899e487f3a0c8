// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the TaskMaster TUI.

All colors are Lip Gloss AdaptiveColors so light and dark terminals are
handled without configuration. Every status color is paired with an ASCII
indicator from StatusIndicators so meaning never depends on color alone.

	theme := styles.NewTheme()
	theme.SetSize(width, height)
	title := theme.DialogTitle.Render(styles.StatusIndicators.Warning + " Session Timeout Warning")
*/
package styles
