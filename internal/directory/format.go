// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"strings"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/util"
)

const (
	idColumnWidth      = 8
	updatedColumnWidth = 16
	titleColumnWidth   = 40
)

// FormatList renders summaries as a plain-text table. The active
// conversation is marked with "*".
func FormatList(items []model.Summary, active model.ID) string {
	if len(items) == 0 {
		return "No conversations yet."
	}

	var sb strings.Builder
	sb.WriteString("  " + util.PadRight("ID", idColumnWidth) + " " +
		util.PadRight("Updated", updatedColumnWidth) + " Title\n")
	sb.WriteString("  " + strings.Repeat("-", idColumnWidth+updatedColumnWidth+titleColumnWidth+2) + "\n")

	for _, s := range items {
		marker := "  "
		if !active.IsZero() && s.ID == active {
			marker = "* "
		}
		updated := ""
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		sb.WriteString(marker +
			util.PadRight(s.ID.String(), idColumnWidth) + " " +
			util.PadRight(updated, updatedColumnWidth) + " " +
			util.TruncateWidth(s.DisplayTitle(), titleColumnWidth) + "\n")
	}
	return sb.String()
}

// SidebarLabel returns a title fitted to the given display width.
func SidebarLabel(s model.Summary, width int) string {
	return util.TruncateWidth(util.SingleLine(s.DisplayTitle()), width)
}
