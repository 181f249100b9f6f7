// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"dark", ModeDark},
		{" Light ", ModeLight},
		{"solarized", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMode(tt.in))
		})
	}
}

func TestNewThemeWithForcedMode(t *testing.T) {
	dark := NewThemeWithMode(ModeDark)
	assert.True(t, dark.IsDark)
	assert.Equal(t, "dark", dark.GlamourStyle())
	assert.True(t, lipgloss.HasDarkBackground())

	light := NewThemeWithMode(ModeLight)
	assert.False(t, light.IsDark)
	assert.Equal(t, "light", light.GlamourStyle())
	assert.False(t, lipgloss.HasDarkBackground())

	unknown := NewThemeWithMode(Mode("neon"))
	assert.Equal(t, ModeAuto, unknown.Mode)
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewThemeWithMode(ModeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"SystemBubble", theme.SystemBubble},
		{"Sidebar", theme.Sidebar},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"Modal", theme.Modal},
	}
	for _, s := range styles {
		assert.Contains(t, s.style.Render("test"), "test", s.name)
	}
}

func TestRoleHelpers(t *testing.T) {
	theme := NewThemeWithMode(ModeLight)
	assert.Contains(t, theme.RoleLabel("user", "You"), "You")
	assert.Contains(t, theme.RoleLabel("system", "Notice"), "Notice")
	assert.Contains(t, theme.Bubble("assistant").Render("hi"), "hi")
}

func TestFeedbackIndicator(t *testing.T) {
	assert.Equal(t, "", FeedbackIndicator(false, true))
	assert.Equal(t, "[+]", FeedbackIndicator(true, true))
	assert.Equal(t, "[-]", FeedbackIndicator(true, false))
}
