// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders assistant content with glamour. Renderers are
// built lazily per wrap width since glamour fixes the width at creation.
type MarkdownRenderer struct {
	// Style is a glamour standard style name ("dark", "light") or empty
	// for terminal auto-detection.
	Style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer for the given glamour style.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{
		Style:     style,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render renders content wrapped at width. It returns content unchanged if
// glamour fails.
func (r *MarkdownRenderer) Render(content string, width int) string {
	tr, err := r.renderer(width)
	if err != nil {
		return content
	}
	out, err := tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.renderers[width]; ok {
		return tr, nil
	}

	styleOpt := glamour.WithAutoStyle()
	if r.Style != "" {
		styleOpt = glamour.WithStandardStyle(r.Style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	r.renderers[width] = tr
	return tr, nil
}
