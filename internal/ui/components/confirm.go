// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRM DIALOG
// =============================================================================

// ConfirmDialog asks a yes/no question. No is selected initially.
type ConfirmDialog struct {
	Theme  *styles.Theme
	Prompt string
	Width  int
	yes    bool
}

// NewConfirmDialog creates a dialog for prompt.
func NewConfirmDialog(theme *styles.Theme, prompt string) ConfirmDialog {
	return ConfirmDialog{Theme: theme, Prompt: prompt, Width: 52}
}

// Update handles a key. done reports that the user answered; ok is the
// answer.
func (d ConfirmDialog) Update(msg tea.KeyMsg) (dialog ConfirmDialog, done, ok bool) {
	switch msg.String() {
	case "y", "Y":
		return d, true, true
	case "n", "N", "esc", "q":
		return d, true, false
	case "left", "right", "tab", "h", "l":
		d.yes = !d.yes
	case "enter":
		return d, true, d.yes
	}
	return d, false, false
}

// View renders the dialog.
func (d ConfirmDialog) View() string {
	t := d.Theme
	yes, no := t.Button.Render("Yes"), t.ButtonActive.Render("No")
	if d.yes {
		yes, no = t.ButtonActive.Render("Yes"), t.Button.Render("No")
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		t.WarningStyle.Render(styles.StatusIndicators.Warning+" "+d.Prompt),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no),
	)
	return t.Modal.BorderForeground(styles.Rose).Width(d.Width).Render(body)
}
