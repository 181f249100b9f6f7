// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE LIST
// =============================================================================

// MessageList renders the conversation history.
type MessageList struct {
	Theme *styles.Theme

	// Markdown renders assistant replies. Nil renders them as plain text
	// with highlighted code blocks.
	Markdown  *MarkdownRenderer
	CodeStyle string

	ShowTimestamps bool
	Width          int

	// Selected is the index of the highlighted message, or -1.
	Selected int

	now func() time.Time
}

// NewMessageList creates a message list with no selection.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Theme:     theme,
		CodeStyle: DefaultCodeStyle,
		Width:     80,
		Selected:  -1,
		now:       time.Now,
	}
}

// Render renders msgs and returns the starting line of each message in the
// output so a viewport can scroll to the selection.
func (ml *MessageList) Render(msgs []model.Message) (string, []int) {
	offsets := make([]int, len(msgs))
	var parts []string
	line := 0
	for i, msg := range msgs {
		offsets[i] = line
		block := ml.renderMessage(msg, i == ml.Selected)
		parts = append(parts, block)
		line += lipgloss.Height(block) + 1
	}
	return strings.Join(parts, "\n\n"), offsets
}

func (ml *MessageList) renderMessage(msg model.Message, selected bool) string {
	t := ml.Theme
	role := string(msg.Role)

	label := msg.Role.DisplayName()
	if msg.Role == model.RoleSystem {
		label = "Notice"
	}
	header := t.RoleLabel(role, label)
	if ml.ShowTimestamps {
		if ts := formatTime(msg.CreatedAt.Time, ml.now()); ts != "" {
			header += " " + t.Timestamp.Render(ts)
		}
	}
	if msg.Feedback != nil {
		indicator := styles.FeedbackIndicator(true, msg.Feedback.IsPositive)
		if msg.Feedback.IsPositive {
			header += " " + t.FeedbackUp.Render(indicator)
		} else {
			header += " " + t.FeedbackDown.Render(indicator)
		}
	}
	if msg.Role == model.RoleUser && !msg.IsPersisted() {
		header += " " + t.Muted.Render("(pending)")
	}

	bodyWidth := maxInt(ml.Width-4, 20)
	body := ml.renderBody(msg, bodyWidth)

	bubble := t.Bubble(role)
	if selected {
		bubble = bubble.BorderForeground(styles.Cyan)
		header = t.InfoStyle.Render("> ") + header
	}
	return header + "\n" + bubble.Width(bodyWidth).Render(body)
}

func (ml *MessageList) renderBody(msg model.Message, width int) string {
	content := msg.Content
	if content == "" {
		content = "..."
	}
	if msg.Role != model.RoleAssistant {
		return content
	}
	if ml.Markdown != nil {
		return ml.Markdown.Render(content, width)
	}
	return RenderCodeBlocks(content, ml.CodeStyle, width)
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// RenderAttachments renders the knowledge-base line shown above the history.
func RenderAttachments(theme *styles.Theme, atts []model.Attachment, width int) string {
	if len(atts) == 0 {
		return ""
	}
	names := make([]string, len(atts))
	for i, a := range atts {
		names[i] = a.Filename
	}
	line := theme.Muted.Render("Knowledge base: ") + theme.Attachment.Render(strings.Join(names, ", "))
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// =============================================================================
// STARTER PROMPTS
// =============================================================================

// RenderStarters renders the numbered starter prompts for an empty
// conversation.
func RenderStarters(theme *styles.Theme, prompts []string, width int) string {
	title := theme.ModalTitle.Render("How can I help you today?")
	items := make([]string, len(prompts))
	for i, p := range prompts {
		items[i] = theme.Starter.Render(theme.ShortcutKey.Render(string(rune('1'+i))) + " " + p)
	}
	hint := theme.Muted.Render("Press a number to use a prompt, or start typing.")
	block := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(items, "\n"), hint)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
