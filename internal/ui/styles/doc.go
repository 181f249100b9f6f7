// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the aura TUI.

All colors are Lip Gloss AdaptiveColor values. The Theme decides between
their light and dark variants either from the terminal background (auto) or
from the [ui] theme setting (dark, light).

# Colors (colors.go)

  - Purple - assistant messages, selection, primary accent
  - Cyan - user messages, focus
  - Emerald - success, positive feedback, attachments
  - Rose - errors, negative feedback
  - Amber - notices and busy states

# Theme (theme.go)

	theme := styles.NewThemeWithMode(styles.ParseMode(cfg.UI.Theme))
	label := theme.RoleLabel("assistant", "Aura")
	body := theme.Bubble("assistant").Width(72).Render(content)
*/
package styles
