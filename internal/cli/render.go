// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/ui/components"
	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

const defaultWidth = 80

// =============================================================================
// MESSAGE PRINTER
// =============================================================================

// printer writes messages for line-oriented output. Replies are rendered
// as Markdown only when the output is a terminal and Markdown is enabled.
type printer struct {
	out      io.Writer
	markdown *components.MarkdownRenderer
	width    int
}

func newPrinter(out io.Writer, markdown bool, theme string) *printer {
	p := &printer{out: out, width: terminalWidth(out, defaultWidth)}
	if markdown && isTerminal(out) {
		p.markdown = components.NewMarkdownRenderer(glamourStyle(theme))
	}
	return p
}

// glamourStyle maps the [ui] theme to a glamour style; "" auto-detects.
func glamourStyle(theme string) string {
	mode := styles.ParseMode(theme)
	if mode == styles.ModeAuto {
		return ""
	}
	return styles.NewThemeWithMode(mode).GlamourStyle()
}

// message prints one message with its role label.
func (p *printer) message(msg model.Message) {
	switch msg.Role {
	case model.RoleUser:
		fmt.Fprintln(p.out, userStyle.Render("You:")+" "+msg.Content)
	case model.RoleSystem:
		fmt.Fprintln(p.out, noticeStyle.Render(msg.Content))
	default:
		label := assistantStyle.Render("Aura:")
		if msg.Feedback != nil {
			label += " " + mutedStyle.Render(styles.FeedbackIndicator(true, msg.Feedback.IsPositive))
		}
		fmt.Fprintln(p.out, label)
		fmt.Fprintln(p.out, p.body(msg.Content))
	}
}

// reply prints only the content of an assistant reply.
func (p *printer) reply(msg model.Message) {
	if msg.Role == model.RoleSystem {
		fmt.Fprintln(p.out, noticeStyle.Render(msg.Content))
		return
	}
	fmt.Fprintln(p.out, p.body(msg.Content))
}

func (p *printer) body(content string) string {
	if p.markdown == nil {
		return content
	}
	return p.markdown.Render(content, p.width)
}

// attachments prints the knowledge base line when there is one.
func (p *printer) attachments(atts []model.Attachment) {
	if len(atts) == 0 {
		return
	}
	names := make([]string, 0, len(atts))
	for _, a := range atts {
		names = append(names, a.Filename)
	}
	fmt.Fprintln(p.out, mutedStyle.Render("Knowledge base: "+strings.Join(names, ", ")))
}

func (p *printer) notice(format string, args ...any) {
	fmt.Fprintln(p.out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.out, successStyle.Render("[OK]")+" "+fmt.Sprintf(format, args...))
}

func (p *printer) failure(err error) {
	fmt.Fprintln(p.out, errorStyle.Render("[X]")+" "+errorText(err))
}
