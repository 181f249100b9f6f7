// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "Explain quantum physics", "Explain quantum physics"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"thirty one", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"trimmed", "  hello  ", "hello"},
		{"multibyte", strings.Repeat("\u00e9", 35), strings.Repeat("\u00e9", 30) + "..."},
		{"decomposed is composed first", strings.Repeat("e\u0301", 30), strings.Repeat("\u00e9", 30)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.input))
		})
	}
}

// =============================================================================
// ID TESTS
// =============================================================================

func TestID_JSON(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "role": "assistant", "content": "hi"}`), &msg))
	assert.Equal(t, ID("42"), msg.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc", "role": "assistant", "content": "hi"}`), &msg))
	assert.Equal(t, ID("abc"), msg.ID)

	out, err := json.Marshal(struct {
		MessageID ID `json:"message_id"`
		Other     ID `json:"other"`
	}{MessageID: "42", Other: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_id": 42, "other": "abc"}`, string(out))
}

func TestMessage_CanRate(t *testing.T) {
	optimistic := NewMessage(RoleAssistant, "x")
	assert.False(t, optimistic.CanRate())
	assert.NotEmpty(t, optimistic.Key)

	optimistic.ID = "7"
	assert.True(t, optimistic.CanRate())

	user := Message{ID: "8", Role: RoleUser}
	assert.False(t, user.CanRate())
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_DecodeServicePayload(t *testing.T) {
	payload := `{
		"id": 3,
		"title": "Hello",
		"created_at": "2025-01-02T03:04:05.123456",
		"updated_at": "2025-01-02T03:04:06Z",
		"system_prompt": "be brief",
		"temperature": "1.3",
		"selected_model": "aura-precise",
		"messages": [
			{"id": 1, "role": "user", "content": "hi"},
			{"id": 2, "role": "assistant", "content": "hello", "feedback": {"is_positive": true}}
		],
		"attachments": [{"id": 5, "filename": "notes.txt", "content_type": "text/plain"}]
	}`

	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(payload), &conv))

	assert.Equal(t, ID("3"), conv.ID)
	assert.Equal(t, 2025, conv.CreatedAt.Year())
	require.Len(t, conv.Messages, 2)
	require.NotNil(t, conv.Messages[1].Feedback)
	assert.True(t, conv.Messages[1].Feedback.IsPositive)
	require.Len(t, conv.Attachments, 1)
	assert.Equal(t, "notes.txt", conv.Attachments[0].Filename)
	assert.Equal(t, "text/plain", conv.Attachments[0].Metadata["content_type"])

	s := conv.Settings()
	assert.Equal(t, "be brief", s.SystemPrompt)
	assert.InDelta(t, 1.3, s.Temperature, 1e-9)
	assert.Equal(t, ModelPrecise, s.Model)
}

func TestConversation_SettingsDefaults(t *testing.T) {
	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "title": "t"}`), &conv))

	assert.Nil(t, conv.Messages)
	assert.Equal(t, DefaultSettings(), conv.Settings())

	bad := 9.0
	conv.Temperature = &bad
	conv.SelectedModel = "gpt-unknown"
	assert.Equal(t, DefaultSettings(), conv.Settings())
}

func TestLastIndexOfRole(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleSystem, Content: "c"},
	}
	assert.Equal(t, 0, LastIndexOfRole(msgs, RoleUser))
	assert.Equal(t, 2, LastIndexOfRole(msgs, RoleSystem))
	assert.Equal(t, -1, LastIndexOfRole(nil, RoleUser))
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())

	s.Temperature = 2.5
	assert.Error(t, s.Validate())

	s.Temperature = 0
	s.Model = "nope"
	assert.Error(t, s.Validate())
}

func TestSettings_Patch(t *testing.T) {
	s := Settings{SystemPrompt: "p", Temperature: 0, Model: ModelCreative}
	out, err := json.Marshal(s.Patch())
	require.NoError(t, err)
	assert.JSONEq(t, `{"system_prompt": "p", "temperature": 0, "selected_model": "aura-creative"}`, string(out))
	assert.True(t, ConversationPatch{}.IsEmpty())
}

func TestParseModelVariant(t *testing.T) {
	v, err := ParseModelVariant("Creative")
	require.NoError(t, err)
	assert.Equal(t, ModelCreative, v)

	v, err = ParseModelVariant("aura-precise")
	require.NoError(t, err)
	assert.Equal(t, ModelPrecise, v)

	_, err = ParseModelVariant("turbo")
	assert.Error(t, err)

	assert.Equal(t, ModelStandard, ModelPrecise.Next())
}

func TestAnalytics_Satisfaction(t *testing.T) {
	assert.Equal(t, 0, Analytics{}.Satisfaction())
	assert.Equal(t, 67, Analytics{PositiveFeedback: 2, NegativeFeedback: 1}.Satisfaction())

	a := Analytics{ModelDistribution: map[string]int{"aura-precise": 1, "aura-standard": 4, "aura-creative": 1}}
	rows := a.SortedUsage()
	require.Len(t, rows, 3)
	assert.Equal(t, "aura-standard", rows[0].Model)
	assert.Equal(t, "aura-creative", rows[1].Model)
}
