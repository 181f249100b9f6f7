// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTitle names a conversation before anything derives a title.
	DefaultTitle = "New Chat"

	// FileChatTitle names a conversation created lazily by an upload.
	FileChatTitle = "New Chat (File)"

	// TitleMaxRunes bounds titles derived from the first message.
	TitleMaxRunes = 30
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the full state of a conversation as fetched from the
// service.
type Conversation struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`

	SystemPrompt  string       `json:"system_prompt"`
	Temperature   *float64     `json:"temperature,omitempty"`
	SelectedModel ModelVariant `json:"selected_model"`

	Messages    []Message    `json:"messages"`
	Attachments []Attachment `json:"attachments"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// UnmarshalJSON accepts temperature as either a number or a numeric string.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	type alias Conversation
	var raw struct {
		alias
		Temperature json.RawMessage `json:"temperature"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Conversation(raw.alias)
	c.Temperature = nil

	temp, err := decodeFlexibleFloat(raw.Temperature)
	if err != nil {
		return fmt.Errorf("decode temperature: %w", err)
	}
	c.Temperature = temp
	return nil
}

// Settings returns the conversation's generation settings, falling back to
// defaults for absent or invalid values.
func (c *Conversation) Settings() Settings {
	s := DefaultSettings()
	s.SystemPrompt = c.SystemPrompt
	if c.Temperature != nil && *c.Temperature >= MinTemperature && *c.Temperature <= MaxTemperature {
		s.Temperature = *c.Temperature
	}
	if c.SelectedModel.IsValid() {
		s.Model = c.SelectedModel
	}
	return s
}

// Summary returns the directory form of the conversation.
func (c *Conversation) Summary() Summary {
	return Summary{ID: c.ID, Title: c.Title, UpdatedAt: c.UpdatedAt}
}

// GetLastUserMessage returns the index of the most recent user message,
// scanning backward from the tail, or -1 if there is none.
func (c *Conversation) GetLastUserMessage() int {
	return LastIndexOfRole(c.Messages, RoleUser)
}

// LastIndexOfRole scans msgs from the tail and returns the index of the
// first message with the given role, or -1.
func LastIndexOfRole(msgs []Message, role Role) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == role {
			return i
		}
	}
	return -1
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the directory form of a conversation.
type Summary struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// DisplayTitle returns the title or the default label when empty.
func (s Summary) DisplayTitle() string {
	if strings.TrimSpace(s.Title) == "" {
		return DefaultTitle
	}
	return s.Title
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle returns the first TitleMaxRunes characters of text, suffixed
// with "..." when truncated. Text is NFC-normalized first so composed and
// decomposed input truncate identically.
func DeriveTitle(text string) string {
	text = norm.NFC.String(strings.TrimSpace(text))
	runes := []rune(text)
	if len(runes) <= TitleMaxRunes {
		return text
	}
	return string(runes[:TitleMaxRunes]) + "..."
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeFlexibleFloat(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		return &f, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
