// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is a key hint shown on the right of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar shows the active settings, busy states and key hints.
type StatusBar struct {
	Theme     *styles.Theme
	Width     int
	Settings  model.Settings
	Sending   bool
	Uploading bool
	Spinner   string

	// Flash is a transient message, such as "Copied".
	Flash string

	Shortcuts []Shortcut
}

// View renders the bar on one line.
func (b *StatusBar) View() string {
	t := b.Theme

	left := []string{
		t.StatusModel.Render(b.Settings.Model.Label()),
		fmt.Sprintf("temp %.1f", b.Settings.Temperature),
	}
	switch {
	case b.Sending:
		left = append(left, t.StatusBusy.Render(b.Spinner+" Thinking..."))
	case b.Uploading:
		left = append(left, t.StatusBusy.Render(b.Spinner+" Uploading..."))
	}
	if b.Flash != "" {
		left = append(left, t.InfoStyle.Render(b.Flash))
	}
	leftStr := strings.Join(left, t.Muted.Render(" | "))

	var hints []string
	for _, s := range b.Shortcuts {
		hints = append(hints, t.ShortcutKey.Render(s.Key)+" "+t.ShortcutDesc.Render(s.Desc))
	}
	rightStr := strings.Join(hints, "  ")

	inner := b.Width - 2
	gap := inner - lipgloss.Width(leftStr) - lipgloss.Width(rightStr)
	if gap < 1 {
		rightStr = ""
		gap = maxInt(inner-lipgloss.Width(leftStr), 0)
	}
	return t.StatusBar.Width(b.Width).MaxWidth(b.Width).Render(leftStr + strings.Repeat(" ", gap) + rightStr)
}
