// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// Shared styles for command output. Colors are disabled for non-TTY output
// by the root command.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	userStyle      = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(styles.Amber).Italic(true)
)

// labelValue renders a "label  value" line.
func labelValue(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
