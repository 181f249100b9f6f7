// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
)

// Transcript is the exportable view of a conversation.
type Transcript struct {
	ID          model.ID           `json:"id,omitempty"`
	Title       string             `json:"title"`
	Settings    model.Settings     `json:"settings"`
	Messages    []model.Message    `json:"messages"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
	CreatedAt   model.Timestamp    `json:"created_at"`
	ExportedAt  time.Time          `json:"exported_at"`
}

// DisplayTitle returns the title, or the default for untitled transcripts.
func (t *Transcript) DisplayTitle() string {
	if t.Title == "" {
		return model.DefaultTitle
	}
	return t.Title
}

// FromState builds a transcript from a session snapshot. The creation time
// is taken from the first message.
func FromState(st session.State) *Transcript {
	t := &Transcript{
		ID:          st.ID,
		Title:       st.Title,
		Settings:    st.Settings,
		Messages:    st.Messages,
		Attachments: st.Attachments,
		ExportedAt:  time.Now(),
	}
	for _, m := range st.Messages {
		if !m.CreatedAt.IsZero() {
			t.CreatedAt = m.CreatedAt
			break
		}
	}
	return t
}

// FromConversation builds a transcript from a fetched conversation.
func FromConversation(conv *model.Conversation) *Transcript {
	if conv == nil {
		return nil
	}
	return &Transcript{
		ID:          conv.ID,
		Title:       conv.Title,
		Settings:    conv.Settings(),
		Messages:    conv.Messages,
		Attachments: conv.Attachments,
		CreatedAt:   conv.CreatedAt,
		ExportedAt:  time.Now(),
	}
}

func (t *Transcript) validate() error {
	if t == nil {
		return errNilTranscript
	}
	if len(t.Messages) == 0 {
		return errEmptyTranscript
	}
	return nil
}
