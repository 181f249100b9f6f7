// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aura-tui/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

// =============================================================================
// CONVERSATION ENDPOINT TESTS
// =============================================================================

func TestCreateConversation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/conversations", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello", body["title"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 12, "title": "Hello", "messages": []}`))
	})

	conv, err := client.CreateConversation(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, model.ID("12"), conv.ID)
}

func TestCreateConversation_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Hello"}`))
	})

	_, err := client.CreateConversation(context.Background(), "Hello")
	assert.Error(t, err)
}

func TestListConversations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`[{"id": 2, "title": "b"}, {"id": 1, "title": "a"}]`))
	})

	list, err := client.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ID("2"), list[0].ID)
	assert.Equal(t, "a", list[1].Title)
}

func TestSendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/7/messages", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user", body["role"])
		assert.Equal(t, "hi", body["content"])
		w.Write([]byte(`{"id": 99, "conversation_id": 7, "role": "assistant", "content": "hello"}`))
	})

	reply, err := client.SendMessage(context.Background(), "7", "hi")
	require.NoError(t, err)
	assert.Equal(t, model.ID("99"), reply.ID)
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Equal(t, "hello", reply.Content)
}

func TestSendMessage_EmptyID(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.SendMessage(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestUpdateConversation_SendsPartialBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"temperature": 1.5}`, string(raw))
		w.Write([]byte(`{"id": 7, "title": "x", "temperature": "1.5"}`))
	})

	temp := 1.5
	conv, err := client.UpdateConversation(context.Background(), "7", model.ConversationPatch{Temperature: &temp})
	require.NoError(t, err)
	require.NotNil(t, conv.Temperature)
	assert.InDelta(t, 1.5, *conv.Temperature, 1e-9)
}

func TestDeleteConversation(t *testing.T) {
	var called atomic.Bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/conversations/5", r.URL.Path)
		w.Write([]byte(`{"ok": true}`))
	})

	require.NoError(t, client.DeleteConversation(context.Background(), "5"))
	assert.True(t, called.Load())
}

// =============================================================================
// UPLOAD / FEEDBACK / ANALYTICS TESTS
// =============================================================================

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("conversation_id"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.txt", hdr.Filename)
		assert.Equal(t, "some notes", string(data))
		w.Write([]byte(`{"id": 1, "filename": "notes.txt", "size": 10}`))
	})

	att, err := client.UploadFile(context.Background(), "3", "notes.txt", strings.NewReader("some notes"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", att.Filename)
	assert.EqualValues(t, 10, att.Metadata["size"])
}

func TestSubmitFeedback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"message_id": 4, "conversation_id": 2, "is_positive": false, "comment": "meh"}`, string(raw))
		w.Write([]byte(`{"status": "success"}`))
	})

	err := client.SubmitFeedback(context.Background(), FeedbackRequest{
		MessageID: "4", ConversationID: "2", IsPositive: false, Comment: "meh",
	})
	require.NoError(t, err)
}

func TestAnalytics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_messages": 10, "total_tokens": 120, "model_distribution": {"aura-standard": 5},
			"positive_feedback_count": 3, "negative_feedback_count": 1}`))
	})

	a, err := client.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, a.TotalMessages)
	assert.Equal(t, 5, a.ModelDistribution["aura-standard"])
	assert.Equal(t, 75, a.Satisfaction())
}

// =============================================================================
// ERROR HANDLING TESTS
// =============================================================================

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		rateLimited bool
		notFound    bool
		detail      string
	}{
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"detail": "Too many requests. Rate limit is 10 messages per minute."}`,
			rateLimited: true,
			detail:      "Too many requests. Rate limit is 10 messages per minute.",
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"detail": "Conversation not found"}`,
			notFound: true,
			detail:   "Conversation not found",
		},
		{
			name:   "plain text server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			detail: "boom",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.SendMessage(context.Background(), "1", "hi")
			require.Error(t, err)
			assert.Equal(t, tc.rateLimited, IsRateLimited(err))
			assert.Equal(t, tc.notFound, errors.Is(err, ErrNotFound))

			var serr *StatusError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tc.status, serr.Status)
			assert.Equal(t, tc.detail, serr.Detail)
			assert.NotEmpty(t, serr.RequestID)
		})
	}
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.SendMessage(ctx, "1", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRateLimit_Paces(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	})
	client.WithRateLimit(1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.ListConversations(ctx)
	require.NoError(t, err)
	_, err = client.ListConversations(ctx)
	assert.Error(t, err, "second request must wait longer than the deadline")
	assert.Equal(t, int32(1), hits.Load())
}
