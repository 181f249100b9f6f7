// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aura-tui/internal/ui/styles"
)

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "monokai"

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced code block from message content.
type CodeBlock struct {
	Language string
	Code     string
	Style    string
	MaxWidth int
}

// Render renders the code block with line numbers and highlighting.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	lines := strings.Split(highlightCode(code, c.Language, c.Style), "\n")

	lineNumStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = lineNumStyle.Render(strconv.Itoa(i+1)) + line
	}

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.OverlayDim).
			Padding(0, 1).
			Bold(true).
			Render(c.Language) + "\n"
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxInt(c.MaxWidth, 20)).
		Render(header + strings.Join(rendered, "\n"))
}

// RenderCodeBlocks replaces fenced code blocks in text with highlighted
// blocks and leaves prose untouched. An unclosed fence runs to the end.
func RenderCodeBlocks(text, style string, maxWidth int) string {
	var (
		out      []string
		code     []string
		language string
		inCode   bool
	)
	flush := func() {
		cb := CodeBlock{Language: language, Code: strings.Join(code, "\n"), Style: style, MaxWidth: maxWidth}
		out = append(out, cb.Render())
		code, language = nil, ""
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```") && inCode:
			flush()
			inCode = false
		case strings.HasPrefix(trimmed, "```"):
			language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			inCode = true
		case inCode:
			code = append(code, line)
		default:
			out = append(out, line)
		}
	}
	if inCode {
		flush()
	}
	return strings.Join(out, "\n")
}

// highlightCode returns code unchanged when highlighting fails.
func highlightCode(code, language, style string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	s := chromaStyles.Get(style)
	if s == nil {
		s = chromaStyles.Get(DefaultCodeStyle)
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return code
	}
	return buf.String()
}
