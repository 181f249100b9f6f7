// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
)

// =============================================================================
// SEND / REGENERATE
// =============================================================================

// SendMessage appends text as a user message immediately, creates the
// conversation if the session has none, submits the text and appends the
// reply. Transport failures are appended as a system notice and are not
// returned. It returns ErrEmptyMessage or session.ErrBusy when the send
// cannot start.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	x, err := c.session.BeginSend(ctx, text)
	if err != nil {
		return err
	}
	c.runExchange(x)
	return nil
}

// Regenerate resubmits the most recent user message, replacing a trailing
// assistant reply. It is a silent no-op when there is nothing to
// regenerate or the session has no identity. It returns session.ErrBusy
// while another send or regenerate is in flight.
func (c *Controller) Regenerate(ctx context.Context) error {
	x, err := c.session.BeginRegenerate(ctx)
	switch {
	case errors.Is(err, session.ErrNothingToRegenerate), errors.Is(err, session.ErrNotIdentified):
		c.log.Debug().Err(err).Msg("regenerate ignored")
		return nil
	case err != nil:
		return err
	}
	c.runExchange(x)
	return nil
}

// runExchange performs the network half of a send or regenerate and
// settles the exchange exactly once.
func (c *Controller) runExchange(x *session.Exchange) {
	defer x.Release()
	log := c.log.With().Str("op", x.Kind.String()).Logger()

	var (
		id  model.ID
		err error
	)
	if x.NeedsIdentity {
		id, err = c.ensureIdentity(x.Ticket, model.DeriveTitle(x.Prompt))
	} else {
		var ok bool
		if id, ok = x.ID(); !ok {
			err = session.ErrStale
		}
	}
	if err != nil {
		if isStale(x.Ticket, err) {
			log.Debug().Err(err).Msg("exchange superseded before submit")
			x.Abandon()
			return
		}
		log.Error().Err(err).Msg("conversation creation failed")
		x.Fail(noticeFor(x.Kind, err))
		return
	}

	log = log.With().Str("conversation_id", id.String()).Logger()
	reply, err := c.transport.SendMessage(x.Context(), id, x.Prompt)
	if err != nil {
		if isStale(x.Ticket, err) {
			log.Debug().Err(err).Msg("discarding result for previous conversation")
			x.Abandon()
			return
		}
		log.Error().Err(err).Bool("rate_limited", api.IsRateLimited(err)).Msg("message failed")
		x.Fail(noticeFor(x.Kind, err))
		return
	}

	if !x.Complete(*reply) {
		log.Debug().Msg("discarding reply for previous conversation")
	}
}

// noticeFor picks the in-chat failure text.
func noticeFor(kind session.ExchangeKind, err error) string {
	if kind == session.KindRegenerate {
		return model.NoticeRegenerateFailed
	}
	if api.IsRateLimited(err) {
		return model.NoticeRateLimited
	}
	return model.NoticeSendFailed
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// UploadAttachment attaches r under filename to the conversation, creating
// the conversation first if the session has none. It returns session.ErrBusy
// while another upload is in flight. A result that arrives after the user
// switched conversations is discarded and (nil, nil) is returned. Failures
// leave the attachment list unchanged.
func (c *Controller) UploadAttachment(ctx context.Context, filename string, r io.Reader) (*model.Attachment, error) {
	t, err := c.session.Acquire(ctx, session.GuardUpload)
	if err != nil {
		return nil, err
	}
	defer t.Release()
	log := c.log.With().Str("op", "upload").Str("filename", filename).Logger()

	id, err := c.ensureIdentity(t, model.FileChatTitle)
	if err != nil {
		if isStale(t, err) {
			log.Debug().Err(err).Msg("upload superseded before submit")
			return nil, nil
		}
		log.Error().Err(err).Msg("conversation creation failed")
		return nil, err
	}

	att, err := c.transport.UploadFile(t.Context(), id, filename, r)
	if err != nil {
		if isStale(t, err) {
			log.Debug().Err(err).Msg("discarding upload result for previous conversation")
			return nil, nil
		}
		log.Error().Err(err).Str("conversation_id", id.String()).Msg("upload failed")
		return nil, err
	}

	if !t.AddAttachment(*att) {
		log.Debug().Msg("discarding upload result for previous conversation")
		return nil, nil
	}
	log.Info().Str("conversation_id", id.String()).Msg("attachment added")
	return att, nil
}

// UploadFile opens path and uploads it under its base name.
func (c *Controller) UploadFile(ctx context.Context, path string) (*model.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open attachment")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat attachment")
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}
	return c.UploadAttachment(ctx, filepath.Base(path), f)
}

// =============================================================================
// FEEDBACK
// =============================================================================

// GiveFeedback rates an assistant message. It is a no-op when the message
// has no id yet or the session has no identity. A second rating replaces
// the first.
func (c *Controller) GiveFeedback(ctx context.Context, messageID model.ID, isPositive bool) error {
	return c.GiveFeedbackWithComment(ctx, messageID, isPositive, "")
}

// GiveFeedbackWithComment is GiveFeedback with an optional comment.
func (c *Controller) GiveFeedbackWithComment(ctx context.Context, messageID model.ID, isPositive bool, comment string) error {
	if messageID.IsZero() {
		return nil
	}
	t, err := c.session.Acquire(ctx, session.GuardNone)
	if err != nil {
		return err
	}
	defer t.Release()

	convID, ok := t.ID()
	if !ok || convID.IsZero() {
		return nil
	}

	err = c.transport.SubmitFeedback(t.Context(), api.FeedbackRequest{
		MessageID:      messageID,
		ConversationID: convID,
		IsPositive:     isPositive,
		Comment:        comment,
	})
	if err != nil {
		if isStale(t, err) {
			return nil
		}
		c.log.Error().Err(err).
			Str("op", "feedback").
			Str("conversation_id", convID.String()).
			Str("message_id", messageID.String()).
			Msg("feedback failed")
		return err
	}

	t.SetFeedback(messageID, model.Feedback{IsPositive: isPositive, Comment: comment})
	return nil
}

// =============================================================================
// NAVIGATION
// =============================================================================

// SwitchConversation fetches a conversation and opens it in the session.
// Operations in flight for the previous conversation are cancelled and
// their results discarded. If a newer switch or a new chat supersedes this
// one, the fetched state is dropped. On failure the session is unchanged.
func (c *Controller) SwitchConversation(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return session.ErrEmptyID
	}
	seq := c.session.BeginSwitch()

	conv, err := c.transport.GetConversation(ctx, id)
	if err != nil {
		c.log.Error().Err(err).Str("op", "switch").Str("conversation_id", id.String()).Msg("load conversation failed")
		return err
	}
	if !c.session.OpenIfLatest(seq, conv) {
		c.log.Debug().Str("conversation_id", id.String()).Msg("switch superseded")
	}
	return nil
}

// EnsureConversation returns the session's conversation id, creating the
// conversation under title when the session has none. One-shot callers use
// it to persist settings before the first message.
func (c *Controller) EnsureConversation(ctx context.Context, title string) (model.ID, error) {
	t, err := c.session.Acquire(ctx, session.GuardNone)
	if err != nil {
		return "", err
	}
	defer t.Release()
	if title == "" {
		title = model.DefaultTitle
	}
	return c.ensureIdentity(t, title)
}

// NewConversation resets the session to an empty conversation. The service
// is not contacted.
func (c *Controller) NewConversation() {
	c.session.Reset()
}

// DeleteConversation asks for confirmation and deletes the conversation.
// Deleting the open conversation also resets the session. It reports
// whether the conversation was deleted; a declined confirmation returns
// (false, nil).
func (c *Controller) DeleteConversation(ctx context.Context, id model.ID) (bool, error) {
	if id.IsZero() {
		return false, session.ErrEmptyID
	}
	if c.confirm == nil {
		return false, ErrNoConfirmer
	}
	ok, err := c.confirm.Confirm(ctx, model.PromptConfirmDelete)
	if err != nil {
		return false, errors.Wrap(err, "confirm delete")
	}
	if !ok {
		return false, nil
	}

	if err := c.transport.DeleteConversation(ctx, id); err != nil {
		c.log.Error().Err(err).Str("op", "delete").Str("conversation_id", id.String()).Msg("delete failed")
		return false, err
	}

	if c.session.ResetIfID(id) {
		c.log.Debug().Str("conversation_id", id.String()).Msg("deleted open conversation")
	}
	c.refreshDirectoryAsync()
	return true, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// UpdateSettings validates and stores settings locally.
func (c *Controller) UpdateSettings(s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.session.SetSettings(s)
	return nil
}

// SaveSettings persists the session's local settings as a partial update.
// It is a no-op for a conversation that has no identity yet. History and
// attachments are not touched.
func (c *Controller) SaveSettings(ctx context.Context) error {
	t, err := c.session.Acquire(ctx, session.GuardNone)
	if err != nil {
		return err
	}
	defer t.Release()

	id, ok := t.ID()
	if !ok || id.IsZero() {
		return nil
	}

	settings := c.session.Settings()
	if err := settings.Validate(); err != nil {
		return err
	}
	if _, err := c.transport.UpdateConversation(t.Context(), id, settings.Patch()); err != nil {
		if isStale(t, err) {
			return nil
		}
		c.log.Error().Err(err).Str("op", "settings").Str("conversation_id", id.String()).Msg("save settings failed")
		return err
	}
	c.log.Debug().Str("conversation_id", id.String()).Msg("settings saved")
	return nil
}

// =============================================================================
// READ-ONLY HELPERS
// =============================================================================

// CopyMessage returns the content of the message with the given local key.
func (c *Controller) CopyMessage(key string) (string, bool) {
	msg, ok := c.session.Snapshot().Message(key)
	if !ok {
		return "", false
	}
	return msg.Content, true
}

// Analytics fetches the usage summary for the dashboard.
func (c *Controller) Analytics(ctx context.Context) (*model.Analytics, error) {
	return c.transport.Analytics(ctx)
}
