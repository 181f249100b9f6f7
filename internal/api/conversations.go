// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type createConversationRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

// FeedbackRequest rates an assistant message.
type FeedbackRequest struct {
	MessageID      model.ID `json:"message_id"`
	ConversationID model.ID `json:"conversation_id"`
	IsPositive     bool     `json:"is_positive"`
	Comment        string   `json:"comment,omitempty"`
}

func conversationPath(id model.ID) string {
	return "/conversations/" + url.PathEscape(id.String())
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// Health checks that the service is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/", nil, nil)
}

// CreateConversation creates a conversation with the given title.
func (c *Client) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := c.doJSON(ctx, http.MethodPost, "/conversations", createConversationRequest{Title: title}, &conv); err != nil {
		return nil, errors.Wrap(err, "create conversation")
	}
	if conv.ID.IsZero() {
		return nil, errors.New("create conversation: service returned no id")
	}
	return &conv, nil
}

// ListConversations returns conversation summaries, most recent first.
func (c *Client) ListConversations(ctx context.Context) ([]model.Summary, error) {
	var list []model.Summary
	if err := c.doJSON(ctx, http.MethodGet, "/conversations", nil, &list); err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	return list, nil
}

// GetConversation fetches a conversation's full state.
func (c *Client) GetConversation(ctx context.Context, id model.ID) (*model.Conversation, error) {
	if id.IsZero() {
		return nil, ErrEmptyID
	}
	var conv model.Conversation
	if err := c.doJSON(ctx, http.MethodGet, conversationPath(id), nil, &conv); err != nil {
		return nil, errors.Wrapf(err, "get conversation %s", id)
	}
	return &conv, nil
}

// SendMessage submits a user message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, id model.ID, content string) (*model.Message, error) {
	if id.IsZero() {
		return nil, ErrEmptyID
	}
	var reply model.Message
	req := sendMessageRequest{Role: model.RoleUser, Content: content}
	if err := c.doJSON(ctx, http.MethodPost, conversationPath(id)+"/messages", req, &reply); err != nil {
		return nil, errors.Wrapf(err, "send message to %s", id)
	}
	if reply.Role == "" {
		reply.Role = model.RoleAssistant
	}
	return &reply, nil
}

// UpdateConversation applies a partial update.
func (c *Client) UpdateConversation(ctx context.Context, id model.ID, patch model.ConversationPatch) (*model.Conversation, error) {
	if id.IsZero() {
		return nil, ErrEmptyID
	}
	var conv model.Conversation
	if err := c.doJSON(ctx, http.MethodPatch, conversationPath(id), patch, &conv); err != nil {
		return nil, errors.Wrapf(err, "update conversation %s", id)
	}
	return &conv, nil
}

// DeleteConversation deletes a conversation and everything it owns.
func (c *Client) DeleteConversation(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return ErrEmptyID
	}
	if err := c.doJSON(ctx, http.MethodDelete, conversationPath(id), nil, nil); err != nil {
		return errors.Wrapf(err, "delete conversation %s", id)
	}
	return nil
}

// =============================================================================
// ATTACHMENTS, FEEDBACK, ANALYTICS
// =============================================================================

// UploadFile attaches a file to a conversation's context. The body is sent
// as multipart form field "file".
func (c *Client) UploadFile(ctx context.Context, id model.ID, filename string, r io.Reader) (*model.Attachment, error) {
	if id.IsZero() {
		return nil, ErrEmptyID
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "finish multipart body")
	}

	path := "/upload?conversation_id=" + url.QueryEscape(id.String())
	var att model.Attachment
	if err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf, &att); err != nil {
		return nil, errors.Wrapf(err, "upload %s", filename)
	}
	if att.Filename == "" {
		att.Filename = filename
	}
	return &att, nil
}

// SubmitFeedback records a rating for an assistant message.
func (c *Client) SubmitFeedback(ctx context.Context, fb FeedbackRequest) error {
	if fb.MessageID.IsZero() || fb.ConversationID.IsZero() {
		return ErrEmptyID
	}
	if err := c.doJSON(ctx, http.MethodPost, "/feedback", fb, nil); err != nil {
		return errors.Wrapf(err, "feedback for message %s", fb.MessageID)
	}
	return nil
}

// Analytics fetches aggregate usage counters.
func (c *Client) Analytics(ctx context.Context) (*model.Analytics, error) {
	var a model.Analytics
	if err := c.doJSON(ctx, http.MethodGet, "/analytics", nil, &a); err != nil {
		return nil, errors.Wrap(err, "fetch analytics")
	}
	return &a, nil
}
