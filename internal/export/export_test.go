// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
)

func sampleTranscript() *Transcript {
	created := model.Timestamp{Time: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)}
	return &Transcript{
		ID:       "7",
		Title:    "Trip: Lisbon",
		Settings: model.Settings{SystemPrompt: "Be concise", Temperature: 0.7, Model: model.ModelStandard},
		Messages: []model.Message{
			{ID: "1", Role: model.RoleUser, Content: "What to pack?", CreatedAt: created},
			{ID: "2", Role: model.RoleAssistant, Content: "**Layers** and `sunscreen`.\n\n<script>alert(1)</script>",
				CreatedAt: created, Feedback: &model.Feedback{IsPositive: true, Comment: "nice"}},
		},
		Attachments: []model.Attachment{{ID: "3", Filename: "itinerary.md"}},
		CreatedAt:   created,
		ExportedAt:  time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"md": FormatMarkdown, "Markdown": FormatMarkdown, ".json": FormatJSON, "htm": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: \"Trip: Lisbon\"\n"))
	assert.Contains(t, md, "model: aura-standard\n")
	assert.Contains(t, md, "# Trip: Lisbon\n")
	assert.Contains(t, md, "> **System prompt**: Be concise")
	assert.Contains(t, md, "- itinerary.md")
	assert.Contains(t, md, "### You <sub>10:00:00</sub>")
	assert.Contains(t, md, "### Aura")
	assert.Contains(t, md, "<sub>Rated helpful: nice</sub>")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := &Options{IncludeMetadata: false, IncludeTimestamps: false}
	out, err := NewMarkdownExporter(opts).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Trip: Lisbon"))
	assert.Contains(t, md, "### You\n")
	assert.NotContains(t, md, "System prompt")
}

func TestExport_RejectsEmpty(t *testing.T) {
	empty := &Transcript{Title: "x"}
	for _, format := range []Format{FormatMarkdown, FormatJSON, FormatHTML} {
		exp, err := NewExporter(format, nil)
		require.NoError(t, err)
		_, err = exp.Export(empty)
		assert.Error(t, err, format)
		_, err = exp.Export(nil)
		assert.Error(t, err, format)
	}
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)

	var decoded struct {
		ID       model.ID        `json:"id"`
		Title    string          `json:"title"`
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, model.ID("7"), decoded.ID)
	require.Len(t, decoded.Messages, 2)
	assert.True(t, decoded.Messages[1].Feedback.IsPositive)
}

func TestHTMLExporter_RendersMarkdownSafely(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, "<title>Trip: Lisbon</title>")
	assert.Contains(t, page, "<strong>Layers</strong>")
	assert.Contains(t, page, "<code>sunscreen</code>")
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "dark-theme")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(dir, "out")

	path, err := ExportToFile(sampleTranscript(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, opts.OutputDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "conversation_Trip-_Lisbon_"))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "What to pack?")
}

func TestFromState(t *testing.T) {
	s := session.New()
	s.Open(&model.Conversation{
		ID:    "9",
		Title: "Notes",
		Messages: []model.Message{
			{ID: "1", Role: model.RoleUser, Content: "hi", CreatedAt: model.Timestamp{Time: time.Unix(100, 0)}},
		},
	})

	tr := FromState(s.Snapshot())
	assert.Equal(t, model.ID("9"), tr.ID)
	assert.Equal(t, "Notes", tr.DisplayTitle())
	assert.Equal(t, int64(100), tr.CreatedAt.Unix())
	assert.Equal(t, model.DefaultModel, tr.Settings.Model)

	assert.Equal(t, model.DefaultTitle, FromState(session.New().Snapshot()).DisplayTitle())
	assert.Nil(t, FromConversation(nil))
}
