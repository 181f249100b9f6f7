// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
	"github.com/jeranaias/aura-tui/internal/util"
)

// =============================================================================
// ANALYTICS DASHBOARD
// =============================================================================

const analyticsBarWidth = 24

// RenderAnalytics renders the usage dashboard with an optional key hint
// footer. A nil summary renders a loading placeholder.
func RenderAnalytics(theme *styles.Theme, a *model.Analytics, width int, hint string) string {
	t := theme
	rows := []string{t.ModalTitle.Render("Analytics Dashboard")}

	if a == nil {
		rows = append(rows, t.Muted.Render("Loading..."))
		return t.Modal.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	stat := func(label, value string) string {
		return t.FieldLabel.Render(label) + t.InfoStyle.Render(value)
	}
	rows = append(rows,
		stat("Messages", fmtNumber(a.TotalMessages)),
		stat("Tokens", fmtNumber(a.TotalTokens)),
		stat("Satisfaction", fmt.Sprintf("%d%%", a.Satisfaction())),
		stat("Feedback", fmt.Sprintf("%d up / %d down", a.PositiveFeedback, a.NegativeFeedback)),
		"",
		t.SidebarTitle.Render("Model usage"),
	)

	usage := a.SortedUsage()
	if len(usage) == 0 {
		rows = append(rows, t.Muted.Render("No messages yet"))
	}
	top := 0
	for _, u := range usage {
		top = maxInt(top, u.Count)
	}
	for _, u := range usage {
		rows = append(rows, usageBar(t, u, top))
	}
	if hint != "" {
		rows = append(rows, "", t.ShortcutDesc.Render(hint))
	}

	return t.Modal.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func usageBar(t *styles.Theme, u model.ModelUsage, top int) string {
	filled := 0
	if top > 0 {
		filled = u.Count * analyticsBarWidth / top
	}
	if u.Count > 0 && filled == 0 {
		filled = 1
	}
	bar := t.BarFill.Render(strings.Repeat("#", filled)) +
		t.BarEmpty.Render(strings.Repeat(".", analyticsBarWidth-filled))
	return t.FieldLabel.Render(util.TruncateWidth(u.Model, 15)) + bar + " " + fmtNumber(u.Count)
}
