// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewThemeWithMode(styles.ModeDark)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFmtNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		123456:  "123,456",
		1234567: "1,234,567",
		-4500:   "-4,500",
	}
	for in, want := range tests {
		assert.Equal(t, want, fmtNumber(in))
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.Local)
	assert.Equal(t, "", formatTime(time.Time{}, now))
	assert.Equal(t, "09:05", formatTime(time.Date(2025, 3, 10, 9, 5, 0, 0, time.Local), now))
	assert.Equal(t, "Mar 9 09:05", formatTime(time.Date(2025, 3, 9, 9, 5, 0, 0, time.Local), now))
}

func TestRenderCodeBlocks(t *testing.T) {
	text := "Here you go:\n```go\nreturn\n```\nDone."
	out := RenderCodeBlocks(text, "monokai", 60)

	assert.Contains(t, out, "Here you go:")
	assert.Contains(t, out, "Done.")
	assert.Contains(t, out, "return")
	assert.NotContains(t, out, "```")
}

func TestRenderCodeBlocksUnclosedFence(t *testing.T) {
	out := RenderCodeBlocks("intro\n```\nleftover", "no-such-style", 60)
	assert.Contains(t, out, "intro")
	assert.Contains(t, out, "leftover")
	assert.NotContains(t, out, "```")
}

func TestMessageListOffsets(t *testing.T) {
	ml := NewMessageList(testTheme())
	ml.Width = 60
	msgs := []model.Message{
		{ID: "1", Role: model.RoleUser, Content: "hello"},
		{ID: "2", Role: model.RoleAssistant, Content: "line one\nline two", Feedback: &model.Feedback{IsPositive: true}},
		{Role: model.RoleSystem, Content: model.NoticeSendFailed},
	}

	out, offsets := ml.Render(msgs)
	require.Len(t, offsets, 3)
	assert.Equal(t, 0, offsets[0])
	assert.Less(t, offsets[0], offsets[1])
	assert.Less(t, offsets[1], offsets[2])

	assert.Contains(t, out, "You")
	assert.Contains(t, out, "Aura")
	assert.Contains(t, out, "Notice")
	assert.Contains(t, out, "[+]")
	assert.Contains(t, out, "line two")
}

func TestMessageListPendingAndSelection(t *testing.T) {
	ml := NewMessageList(testTheme())
	ml.Selected = 0
	out, _ := ml.Render([]model.Message{model.NewUserMessage("draft")})
	assert.Contains(t, out, "(pending)")
	assert.True(t, strings.Contains(out, "> "))
}

func TestRenderAttachmentsAndStarters(t *testing.T) {
	theme := testTheme()
	assert.Empty(t, RenderAttachments(theme, nil, 80))
	out := RenderAttachments(theme, []model.Attachment{{Filename: "a.txt"}, {Filename: "b.md"}}, 80)
	assert.Contains(t, out, "a.txt, b.md")

	starters := RenderStarters(theme, model.StarterPrompts, 80)
	assert.Contains(t, starters, "Explain quantum physics")
	assert.Contains(t, starters, "4 Summarize this article")
}

func TestSidebar(t *testing.T) {
	sb := &Sidebar{Theme: testTheme(), Width: 30, Height: 10, Active: "2"}
	sb.MoveCursor(5, 3)
	assert.Equal(t, 2, sb.Cursor)
	sb.MoveCursor(-9, 3)
	assert.Equal(t, 0, sb.Cursor)
	sb.MoveCursor(1, 0)
	assert.Equal(t, 0, sb.Cursor)

	out := sb.View([]model.Summary{{ID: "1", Title: "First"}, {ID: "2", Title: "Second"}})
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "* Second")
	assert.Contains(t, sb.View(nil), "No conversations yet")
}

func TestStatusBar(t *testing.T) {
	bar := &StatusBar{
		Theme:     testTheme(),
		Width:     120,
		Settings:  model.DefaultSettings(),
		Sending:   true,
		Spinner:   "*",
		Shortcuts: []Shortcut{{Key: "ctrl+s", Desc: "settings"}},
	}
	out := bar.View()
	assert.Contains(t, out, "Gen Standard")
	assert.Contains(t, out, "temp 0.7")
	assert.Contains(t, out, "Thinking...")
	assert.Contains(t, out, "settings")
}

func TestSettingsFormSave(t *testing.T) {
	form := NewSettingsForm(testTheme(), model.Settings{SystemPrompt: "be brief", Temperature: 0.7, Model: model.ModelStandard})

	var action SettingsAction
	form, _, _ = form.Update(key("tab"))
	form, _, _ = form.Update(key("tab"))
	form, _, _ = form.Update(key("right"))
	form, _, action = form.Update(key("ctrl+s"))
	assert.Equal(t, SettingsSave, action)

	s, err := form.Settings()
	require.NoError(t, err)
	assert.Equal(t, "be brief", s.SystemPrompt)
	assert.Equal(t, 0.7, s.Temperature)
	assert.Equal(t, model.ModelCreative, s.Model)

	form, _, _ = form.Update(key("left"))
	form, _, _ = form.Update(key("left"))
	s, err = form.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.ModelPrecise, s.Model)
}

func TestSettingsFormRejectsBadTemperature(t *testing.T) {
	form := NewSettingsForm(testTheme(), model.DefaultSettings())
	form.temp.SetValue("abc")

	form, _, action := form.Update(key("ctrl+s"))
	assert.Equal(t, SettingsNone, action)
	assert.Contains(t, form.View(), "not a number")

	form.temp.SetValue("3")
	_, err := form.Settings()
	assert.Error(t, err)

	_, _, action = form.Update(key("esc"))
	assert.Equal(t, SettingsCancel, action)
}

func TestConfirmDialog(t *testing.T) {
	d := NewConfirmDialog(testTheme(), model.PromptConfirmDelete)
	assert.Contains(t, d.View(), "Are you sure")

	_, done, ok := d.Update(key("enter"))
	assert.True(t, done)
	assert.False(t, ok, "no is the default")

	d, done, _ = d.Update(key("left"))
	assert.False(t, done)
	_, done, ok = d.Update(key("enter"))
	assert.True(t, done)
	assert.True(t, ok)

	_, done, ok = d.Update(key("y"))
	assert.True(t, done && ok)
	_, done, ok = d.Update(key("esc"))
	assert.True(t, done)
	assert.False(t, ok)
}

func TestRenderAnalytics(t *testing.T) {
	theme := testTheme()
	assert.Contains(t, RenderAnalytics(theme, nil, 60, ""), "Loading")

	out := RenderAnalytics(theme, &model.Analytics{
		TotalMessages:     12,
		TotalTokens:       4321,
		ModelDistribution: map[string]int{"aura-standard": 4, "aura-precise": 2},
		PositiveFeedback:  2,
		NegativeFeedback:  1,
	}, 60, "esc close")
	assert.Contains(t, out, "4,321")
	assert.Contains(t, out, "67%")
	assert.Contains(t, out, "aura-standard")
	assert.Contains(t, out, "########################")
	assert.Contains(t, out, "esc close")
}
