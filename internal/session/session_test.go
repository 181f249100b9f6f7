// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aura-tui/internal/model"
)

func sampleConversation(id model.ID, msgs ...model.Message) *model.Conversation {
	temp := 1.1
	return &model.Conversation{
		ID:            id,
		Title:         "sample",
		SystemPrompt:  "be terse",
		Temperature:   &temp,
		SelectedModel: model.ModelCreative,
		Messages:      msgs,
		Attachments:   []model.Attachment{{Filename: "a.txt"}},
	}
}

func roles(st State) []model.Role {
	out := make([]model.Role, len(st.Messages))
	for i, m := range st.Messages {
		out[i] = m.Role
	}
	return out
}

// =============================================================================
// STATE TRANSITION TESTS
// =============================================================================

func TestNew_IsEmpty(t *testing.T) {
	s := New()
	st := s.Snapshot()

	assert.True(t, st.IsEmpty())
	assert.Equal(t, model.DefaultSettings(), st.Settings)
	assert.False(t, st.Sending)
	assert.False(t, st.Uploading)
}

func TestOpen_ReplacesEverything(t *testing.T) {
	s := New()
	s.AppendMessage(model.NewUserMessage("stale"))

	s.Open(sampleConversation("9", model.Message{ID: "1", Role: model.RoleUser, Content: "hi"}))
	st := s.Snapshot()

	assert.Equal(t, model.ID("9"), st.ID)
	require.Len(t, st.Messages, 1)
	assert.Equal(t, "hi", st.Messages[0].Content)
	assert.NotEmpty(t, st.Messages[0].Key)
	assert.Len(t, st.Attachments, 1)
	assert.Equal(t, model.ModelCreative, st.Settings.Model)
	assert.Equal(t, "be terse", st.Settings.SystemPrompt)
}

func TestOpen_MissingFieldsFallBack(t *testing.T) {
	s := New()
	s.Open(&model.Conversation{ID: "3"})
	st := s.Snapshot()

	assert.NotNil(t, st.Messages)
	assert.Empty(t, st.Messages)
	assert.Equal(t, model.DefaultSettings(), st.Settings)
}

func TestReset_ClearsToDefaults(t *testing.T) {
	s := New()
	s.Open(sampleConversation("9", model.Message{Role: model.RoleUser, Content: "hi"}))

	s.Reset()
	st := s.Snapshot()

	assert.True(t, st.IsEmpty())
	assert.Equal(t, model.DefaultSettings(), st.Settings)
}

func TestPopTrailingIf(t *testing.T) {
	s := New()
	assert.False(t, s.PopTrailingIf(model.RoleAssistant))

	s.AppendMessage(model.NewUserMessage("a"))
	s.AppendMessage(model.NewMessage(model.RoleAssistant, "b"))

	assert.False(t, s.PopTrailingIf(model.RoleUser))
	assert.True(t, s.PopTrailingIf(model.RoleAssistant))
	assert.Equal(t, []model.Role{model.RoleUser}, roles(s.Snapshot()))
}

func TestSetID_SingleTransition(t *testing.T) {
	s := New()

	assert.ErrorIs(t, s.SetID(""), ErrEmptyID)
	require.NoError(t, s.SetID("1"))
	assert.ErrorIs(t, s.SetID("2"), ErrAlreadyIdentified)
	assert.Equal(t, model.ID("1"), s.ID())

	s.Reset()
	require.NoError(t, s.SetID("2"))
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s := New()
	s.Open(sampleConversation("1", model.Message{ID: "5", Role: model.RoleAssistant, Content: "x",
		Feedback: &model.Feedback{IsPositive: true}}))

	st := s.Snapshot()
	st.Messages[0].Feedback.IsPositive = false
	st.Messages[0].Content = "changed"

	again := s.Snapshot()
	assert.True(t, again.Messages[0].Feedback.IsPositive)
	assert.Equal(t, "x", again.Messages[0].Content)
}

// =============================================================================
// GUARD AND TICKET TESTS
// =============================================================================

func TestAcquire_GuardsAreIndependent(t *testing.T) {
	s := New()
	ctx := context.Background()

	send, err := s.Acquire(ctx, GuardSend)
	require.NoError(t, err)
	_, err = s.Acquire(ctx, GuardSend)
	assert.ErrorIs(t, err, ErrBusy)

	upload, err := s.Acquire(ctx, GuardUpload)
	require.NoError(t, err, "upload is gated separately from send")
	_, err = s.Acquire(ctx, GuardUpload)
	assert.ErrorIs(t, err, ErrBusy)

	send.Release()
	send.Release()
	assert.False(t, s.IsSending())
	assert.True(t, s.IsUploading())

	upload.Release()
	assert.False(t, s.IsUploading())
}

func TestOpen_CancelsInFlightAndClearsGuards(t *testing.T) {
	s := New()
	ticket, err := s.Acquire(context.Background(), GuardSend)
	require.NoError(t, err)

	s.Open(sampleConversation("2"))

	assert.ErrorIs(t, ticket.Context().Err(), context.Canceled)
	assert.False(t, s.IsSending())
	assert.False(t, ticket.Current())

	// A new send may start while the stale one is still unwinding.
	fresh, err := s.Acquire(context.Background(), GuardSend)
	require.NoError(t, err)

	ticket.Release()
	assert.True(t, s.IsSending(), "stale release must not clear the new generation's guard")
	fresh.Release()
}

func TestTicket_StaleMutationsDiscarded(t *testing.T) {
	s := New()
	s.Open(sampleConversation("1", model.Message{ID: "7", Role: model.RoleAssistant, Content: "x"}))

	ticket, err := s.Acquire(context.Background(), GuardUpload)
	require.NoError(t, err)
	defer ticket.Release()

	s.Open(sampleConversation("2"))

	assert.False(t, ticket.AppendMessage(model.NewMessage(model.RoleAssistant, "late")))
	assert.False(t, ticket.AddAttachment(model.Attachment{Filename: "late.txt"}))
	assert.False(t, ticket.SetFeedback("7", model.Feedback{IsPositive: true}))
	assert.ErrorIs(t, ticket.Bind("5", ""), ErrStale)

	st := s.Snapshot()
	assert.Equal(t, model.ID("2"), st.ID)
	assert.Empty(t, st.Messages)
	assert.Len(t, st.Attachments, 1)
}

func TestTicket_Bind(t *testing.T) {
	s := New()
	a, err := s.Acquire(context.Background(), GuardSend)
	require.NoError(t, err)
	b, err := s.Acquire(context.Background(), GuardUpload)
	require.NoError(t, err)

	require.NoError(t, a.Bind("10", "Title"))
	require.NoError(t, b.Bind("10", "ignored"), "binding the same id twice is allowed")
	assert.ErrorIs(t, b.Bind("11", ""), ErrAlreadyIdentified)

	st := s.Snapshot()
	assert.Equal(t, model.ID("10"), st.ID)
	assert.Equal(t, "Title", st.Title)
}

func TestTicket_SetFeedbackOverwrites(t *testing.T) {
	s := New()
	s.Open(sampleConversation("1",
		model.Message{ID: "1", Role: model.RoleUser, Content: "q"},
		model.Message{ID: "2", Role: model.RoleAssistant, Content: "a"},
	))

	for _, positive := range []bool{true, false} {
		ticket, err := s.Acquire(context.Background(), GuardNone)
		require.NoError(t, err)
		assert.True(t, ticket.SetFeedback("2", model.Feedback{IsPositive: positive}))
		ticket.Release()
	}

	msg := s.Snapshot().Messages[1]
	require.NotNil(t, msg.Feedback)
	assert.False(t, msg.Feedback.IsPositive)
}

// =============================================================================
// EXCHANGE TESTS
// =============================================================================

func TestBeginSend_OptimisticAppend(t *testing.T) {
	s := New()

	x, err := s.BeginSend(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, x.NeedsIdentity)

	st := s.Snapshot()
	require.Len(t, st.Messages, 1)
	assert.Equal(t, model.RoleUser, st.Messages[0].Role)
	assert.Equal(t, x.UserKey, st.Messages[0].Key)
	assert.True(t, st.Sending)

	_, err = s.BeginSend(context.Background(), "again")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, s.Snapshot().Messages, 1)

	assert.True(t, x.Complete(model.Message{ID: "2", Content: "hi"}))
	st = s.Snapshot()
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleAssistant}, roles(st))
	assert.False(t, st.Sending)
}

func TestBeginSend_RejectsBlank(t *testing.T) {
	s := New()
	_, err := s.BeginSend(context.Background(), "  \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Snapshot().Messages)
	assert.False(t, s.IsSending())
}

func TestExchange_FailAppendsNotice(t *testing.T) {
	s := New()
	x, err := s.BeginSend(context.Background(), "hello")
	require.NoError(t, err)

	assert.True(t, x.Fail(model.NoticeSendFailed))

	st := s.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "hello", st.Messages[0].Content)
	assert.Equal(t, model.RoleSystem, st.Messages[1].Role)
	assert.Equal(t, model.NoticeSendFailed, st.Messages[1].Content)
	assert.False(t, st.Sending)
}

func TestExchange_StaleCompleteDiscarded(t *testing.T) {
	s := New()
	x, err := s.BeginSend(context.Background(), "hello")
	require.NoError(t, err)

	s.Open(sampleConversation("other"))

	assert.False(t, x.Complete(model.Message{Content: "late"}))
	st := s.Snapshot()
	assert.Equal(t, model.ID("other"), st.ID)
	assert.Empty(t, st.Messages)
}

func TestBeginRegenerate(t *testing.T) {
	tests := []struct {
		name      string
		id        model.ID
		history   []model.Role
		wantErr   error
		wantAfter []model.Role
	}{
		{
			name:    "empty history",
			id:      "1",
			wantErr: ErrNothingToRegenerate,
		},
		{
			name:      "assistant only",
			id:        "1",
			history:   []model.Role{model.RoleAssistant, model.RoleAssistant},
			wantErr:   ErrNothingToRegenerate,
			wantAfter: []model.Role{model.RoleAssistant, model.RoleAssistant},
		},
		{
			name:      "single message",
			id:        "1",
			history:   []model.Role{model.RoleUser},
			wantErr:   ErrNothingToRegenerate,
			wantAfter: []model.Role{model.RoleUser},
		},
		{
			name:      "unidentified",
			history:   []model.Role{model.RoleUser, model.RoleSystem},
			wantErr:   ErrNotIdentified,
			wantAfter: []model.Role{model.RoleUser, model.RoleSystem},
		},
		{
			name:      "trailing assistant is discarded",
			id:        "1",
			history:   []model.Role{model.RoleUser, model.RoleAssistant},
			wantAfter: []model.Role{model.RoleUser},
		},
		{
			name:      "trailing notice is kept",
			id:        "1",
			history:   []model.Role{model.RoleUser, model.RoleSystem},
			wantAfter: []model.Role{model.RoleUser, model.RoleSystem},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			if !tc.id.IsZero() {
				require.NoError(t, s.SetID(tc.id))
			}
			for i, r := range tc.history {
				s.AppendMessage(model.NewMessage(r, string(rune('a'+i))))
			}

			x, err := s.BeginRegenerate(context.Background())
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.False(t, s.IsSending())
			} else {
				require.NoError(t, err)
				assert.Equal(t, "a", x.Prompt)
				assert.True(t, s.IsSending())
				x.Abandon()
			}
			assert.Equal(t, len(tc.wantAfter), len(s.Snapshot().Messages))
			if len(tc.wantAfter) > 0 {
				assert.Equal(t, tc.wantAfter, roles(s.Snapshot()))
			}
		})
	}
}

func TestBeginRegenerate_BlockedBySend(t *testing.T) {
	s := New()
	require.NoError(t, s.SetID("1"))
	s.AppendMessage(model.NewUserMessage("a"))
	s.AppendMessage(model.NewMessage(model.RoleAssistant, "b"))

	x, err := s.BeginSend(context.Background(), "c")
	require.NoError(t, err)
	defer x.Abandon()

	_, err = s.BeginRegenerate(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, s.Snapshot().Messages, 3)
}

// =============================================================================
// SWITCH ORDERING TESTS
// =============================================================================

func TestOpenIfLatest(t *testing.T) {
	s := New()
	first := s.BeginSwitch()
	second := s.BeginSwitch()

	assert.True(t, s.OpenIfLatest(second, sampleConversation("2")))
	assert.False(t, s.OpenIfLatest(first, sampleConversation("1")))
	assert.Equal(t, model.ID("2"), s.ID())

	pending := s.BeginSwitch()
	s.Reset()
	assert.False(t, s.OpenIfLatest(pending, sampleConversation("3")))
	assert.True(t, s.Snapshot().IsEmpty())
}

// =============================================================================
// NOTIFICATION AND CONCURRENCY TESTS
// =============================================================================

func TestSubscribe(t *testing.T) {
	s := New()
	var calls atomic.Int32
	unsubscribe := s.Subscribe(func() {
		calls.Add(1)
		_ = s.Snapshot() // listeners may read state
	})

	s.AppendMessage(model.NewUserMessage("a"))
	s.Reset()
	assert.Equal(t, int32(2), calls.Load())

	unsubscribe()
	s.AppendMessage(model.NewUserMessage("b"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			if x, err := s.BeginSend(context.Background(), "hi"); err == nil {
				x.Complete(model.Message{Content: "ok"})
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
		go func(i int) {
			defer wg.Done()
			if i%10 == 0 {
				s.Reset()
			}
		}(i)
	}
	wg.Wait()

	assert.False(t, s.IsSending())
}

func TestResetIfID(t *testing.T) {
	s := New()
	s.Open(sampleConversation("1", model.Message{Role: model.RoleUser, Content: "a"}))

	assert.False(t, s.ResetIfID("2"))
	assert.Equal(t, model.ID("1"), s.ID())

	assert.True(t, s.ResetIfID("1"))
	assert.True(t, s.Snapshot().IsEmpty())
	assert.False(t, s.ResetIfID(""))
}
