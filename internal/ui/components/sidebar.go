// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar lists the conversations of the directory.
type Sidebar struct {
	Theme   *styles.Theme
	Width   int
	Height  int
	Focused bool

	// Cursor is the highlighted row while the sidebar has focus.
	Cursor int

	// Active is the id of the open conversation.
	Active model.ID
}

// MoveCursor moves the cursor by delta, clamped to n items.
func (s *Sidebar) MoveCursor(delta, n int) {
	if n == 0 {
		s.Cursor = 0
		return
	}
	s.Cursor += delta
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Cursor >= n {
		s.Cursor = n - 1
	}
}

// View renders items. Rows scroll to keep the cursor visible.
func (s *Sidebar) View(items []model.Summary) string {
	t := s.Theme
	inner := maxInt(s.Width-4, 8)

	lines := []string{t.SidebarTitle.Render("Conversations")}
	if len(items) == 0 {
		lines = append(lines, t.Muted.Render("No conversations yet"))
	}

	rows := maxInt(s.Height-4, 1)
	start := 0
	if s.Cursor >= rows {
		start = s.Cursor - rows + 1
	}
	for i := start; i < len(items) && i < start+rows; i++ {
		label := directory.SidebarLabel(items[i], inner-2)
		marker := "  "
		style := t.SidebarItem
		if items[i].ID == s.Active {
			marker = "* "
			style = t.SidebarItemActive
		}
		row := style.Render(marker + label)
		if s.Focused && i == s.Cursor {
			row = t.SidebarItemCursor.Width(inner).Render(marker + label)
		}
		lines = append(lines, row)
	}

	box := t.Sidebar
	if s.Focused {
		box = t.SidebarFocused
	}
	return box.Width(s.Width - 2).Height(maxInt(s.Height-2, 1)).Render(strings.Join(lines, "\n"))
}
