// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/aura-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page. Assistant
// replies are rendered from Markdown; raw HTML in messages is escaped.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	title := html.EscapeString(t.DisplayTitle())
	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", title)
	sb.WriteString("    <meta name=\"generator\" content=\"aura\">\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n<div class=\"container\">\n", theme)

	fmt.Fprintf(&sb, "<header><h1>%s</h1>\n", title)
	if e.options.IncludeMetadata {
		sb.WriteString("<div class=\"meta\">")
		fmt.Fprintf(&sb, "<span><strong>Model:</strong> %s</span> ", html.EscapeString(string(t.Settings.Model)))
		fmt.Fprintf(&sb, "<span><strong>Temperature:</strong> %g</span> ", t.Settings.Temperature)
		if !t.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "<span><strong>Created:</strong> %s</span> ", formatTimestamp(t.CreatedAt.Time))
		}
		fmt.Fprintf(&sb, "<span><strong>Messages:</strong> %d</span>", len(t.Messages))
		sb.WriteString("</div>\n")
		if t.Settings.SystemPrompt != "" {
			fmt.Fprintf(&sb, "<blockquote class=\"system\">%s</blockquote>\n", html.EscapeString(t.Settings.SystemPrompt))
		}
	}
	sb.WriteString("</header>\n<main>\n")

	for _, msg := range t.Messages {
		if err := e.renderMessage(&sb, msg); err != nil {
			return nil, err
		}
	}

	sb.WriteString("</main>\n<footer>")
	fmt.Fprintf(&sb, "Exported from <strong>aura</strong> on %s", t.ExportedAt.Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</footer>\n</div>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg model.Message) error {
	fmt.Fprintf(sb, "<section class=\"message %s\">\n<div class=\"role\">%s", html.EscapeString(string(msg.Role)), roleLabel(string(msg.Role)))
	if e.options.IncludeTimestamps && !msg.CreatedAt.IsZero() {
		fmt.Fprintf(sb, " <time datetime=\"%s\">%s</time>", msg.CreatedAt.Format(time.RFC3339), formatShortTimestamp(msg.CreatedAt.Time))
	}
	sb.WriteString("</div>\n<div class=\"content\">")

	if msg.Role == model.RoleAssistant {
		var buf bytes.Buffer
		if err := e.md.Convert([]byte(msg.Content), &buf); err != nil {
			return fmt.Errorf("render message: %w", err)
		}
		sb.Write(buf.Bytes())
	} else {
		fmt.Fprintf(sb, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(msg.Content), "\n", "<br>"))
	}
	sb.WriteString("</div>\n")

	if msg.Feedback != nil {
		fmt.Fprintf(sb, "<div class=\"feedback\">Rated %s", feedbackLabel(msg.Feedback.IsPositive))
		if msg.Feedback.Comment != "" {
			fmt.Fprintf(sb, ": %s", html.EscapeString(msg.Feedback.Comment))
		}
		sb.WriteString("</div>\n")
	}
	sb.WriteString("</section>\n")
	return nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

const css = `    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; line-height: 1.6; }
        .dark-theme { background: #1e1e2e; color: #cdd6f4; }
        .light-theme { background: #fafafa; color: #1e1e2e; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .meta span { margin-right: 1rem; opacity: 0.8; }
        .system { border-left: 3px solid #89b4fa; margin: 1rem 0; padding-left: 1rem; opacity: 0.8; }
        .message { border-radius: 8px; margin: 1rem 0; padding: 0.75rem 1rem; }
        .dark-theme .user { background: #313244; }
        .dark-theme .assistant { background: #181825; }
        .light-theme .user { background: #e6e9ef; }
        .light-theme .assistant { background: #ffffff; }
        .system.message { border: 1px solid #f38ba8; }
        .role { font-weight: bold; margin-bottom: 0.25rem; }
        .role time { font-weight: normal; font-size: 0.8em; opacity: 0.7; }
        pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; background: rgba(127,127,127,0.15); }
        .feedback { font-size: 0.85em; opacity: 0.7; }
        footer { margin-top: 2rem; font-size: 0.85em; opacity: 0.6; text-align: center; }
    </style>
`
