// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Aura"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Feedback is a rating attached to an assistant message.
type Feedback struct {
	IsPositive bool   `json:"is_positive"`
	Comment    string `json:"comment,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	// ID is assigned by the service once the message is persisted.
	// Optimistically inserted messages have no ID.
	ID      ID     `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	Feedback  *Feedback `json:"feedback,omitempty"`
	CreatedAt Timestamp `json:"created_at,omitempty"`

	// Key addresses the message locally for its whole lifetime, including
	// before it has an ID. Never sent to the service.
	Key string `json:"-"`
}

// NewMessage creates a message with a fresh local key.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		CreatedAt: Now(),
		Key:       uuid.NewString(),
	}
}

// NewUserMessage creates an optimistic user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewSystemNotice creates a synthetic system message used to report
// failures inline.
func NewSystemNotice(content string) Message {
	return NewMessage(RoleSystem, content)
}

// IsPersisted reports whether the service has assigned an identity.
func (m Message) IsPersisted() bool {
	return !m.ID.IsZero()
}

// CanRate reports whether feedback may be given on the message.
func (m Message) CanRate() bool {
	return m.Role == RoleAssistant && m.IsPersisted()
}

// Preview returns a single-line preview of the message content.
func (m Message) Preview(maxRunes int) string {
	s := strings.Join(strings.Fields(m.Content), " ")
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	if m.Feedback != nil {
		fb := *m.Feedback
		m.Feedback = &fb
	}
	return m
}

// EnsureKey assigns a local key when one is missing.
func (m *Message) EnsureKey() {
	if m.Key == "" {
		m.Key = uuid.NewString()
	}
}
