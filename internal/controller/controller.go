// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
)

// DefaultRefreshTimeout bounds a background directory refresh.
const DefaultRefreshTimeout = 15 * time.Second

var (
	// ErrEmptyMessage indicates a send with nothing but whitespace.
	ErrEmptyMessage = session.ErrEmptyMessage

	// ErrNoConfirmer indicates a delete without a confirmation step.
	ErrNoConfirmer = errors.New("no confirmation handler configured")
)

// Transport is the remote conversation service. *api.Client satisfies it.
type Transport interface {
	CreateConversation(ctx context.Context, title string) (*model.Conversation, error)
	ListConversations(ctx context.Context) ([]model.Summary, error)
	GetConversation(ctx context.Context, id model.ID) (*model.Conversation, error)
	SendMessage(ctx context.Context, id model.ID, content string) (*model.Message, error)
	UpdateConversation(ctx context.Context, id model.ID, patch model.ConversationPatch) (*model.Conversation, error)
	DeleteConversation(ctx context.Context, id model.ID) error
	UploadFile(ctx context.Context, id model.ID, filename string, r io.Reader) (*model.Attachment, error)
	SubmitFeedback(ctx context.Context, fb api.FeedbackRequest) error
	Analytics(ctx context.Context) (*model.Analytics, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs chat operations against one session and directory.
type Controller struct {
	transport Transport
	session   *session.Session
	dir       *directory.Directory
	confirm   Confirmer
	log       zerolog.Logger

	refreshTimeout time.Duration

	// creates de-duplicates lazy conversation creation per generation.
	creates singleflight.Group

	// refreshes tracks background directory refreshes.
	refreshes sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirmer sets the confirmation step used by DeleteConversation.
func WithConfirmer(c Confirmer) Option {
	return func(ctl *Controller) { ctl.confirm = c }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(ctl *Controller) {
		ctl.log = log.With().Str("component", "controller").Logger()
	}
}

// WithRefreshTimeout bounds background directory refreshes.
func WithRefreshTimeout(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.refreshTimeout = d
		}
	}
}

// New creates a controller.
func New(transport Transport, sess *session.Session, dir *directory.Directory, opts ...Option) *Controller {
	ctl := &Controller{
		transport:      transport,
		session:        sess,
		dir:            dir,
		log:            zerolog.Nop(),
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(ctl)
	}
	return ctl
}

// Session returns the controlled session.
func (c *Controller) Session() *session.Session {
	return c.session
}

// Directory returns the controlled directory.
func (c *Controller) Directory() *directory.Directory {
	return c.dir
}

// Wait blocks until background directory refreshes have finished.
func (c *Controller) Wait() {
	c.refreshes.Wait()
}

// =============================================================================
// DIRECTORY
// =============================================================================

// RefreshDirectory reloads the directory and waits for the result.
func (c *Controller) RefreshDirectory(ctx context.Context) error {
	return c.dir.Refresh(ctx, c.transport)
}

// refreshDirectoryAsync reloads the directory in the background. Failures
// are logged only.
func (c *Controller) refreshDirectoryAsync() {
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()
		if err := c.dir.Refresh(ctx, c.transport); err != nil {
			c.log.Warn().Err(err).Msg("directory refresh failed")
		}
	}()
}

// =============================================================================
// LAZY CREATION
// =============================================================================

// ensureIdentity returns the session's conversation id, creating the
// conversation first if the session is still empty. Concurrent callers of
// the same generation share a single creation call.
func (c *Controller) ensureIdentity(t *session.Ticket, title string) (model.ID, error) {
	id, ok := t.ID()
	if !ok {
		return "", session.ErrStale
	}
	if !id.IsZero() {
		return id, nil
	}

	key := generationKey(t.Generation())
	v, err, shared := c.creates.Do(key, func() (interface{}, error) {
		// A creation that finished just before this call already bound the id.
		if id, ok := t.ID(); !ok {
			return nil, session.ErrStale
		} else if !id.IsZero() {
			return id, nil
		}

		conv, err := c.transport.CreateConversation(t.Context(), title)
		if err != nil {
			return nil, errors.Wrap(err, "create conversation")
		}
		c.log.Info().Str("conversation_id", conv.ID.String()).Str("title", title).Msg("conversation created")
		c.refreshDirectoryAsync()

		boundTitle := conv.Title
		if boundTitle == "" {
			boundTitle = title
		}
		if err := t.Bind(conv.ID, boundTitle); err != nil {
			return nil, err
		}
		return conv.ID, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		if _, ok := t.ID(); !ok {
			return "", session.ErrStale
		}
	}
	return v.(model.ID), nil
}

func generationKey(gen uint64) string {
	return "create:" + strconv.FormatUint(gen, 10)
}

// isStale reports whether err or the ticket indicates the session moved on.
func isStale(t *session.Ticket, err error) bool {
	if errors.Is(err, session.ErrStale) {
		return true
	}
	return !t.Current()
}
