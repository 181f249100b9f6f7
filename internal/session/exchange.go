// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"

	"github.com/jeranaias/aura-tui/internal/model"
)

// ExchangeKind distinguishes a fresh send from a regeneration.
type ExchangeKind int

const (
	KindSend ExchangeKind = iota
	KindRegenerate
)

// String returns the kind name for logs.
func (k ExchangeKind) String() string {
	if k == KindRegenerate {
		return "regenerate"
	}
	return "send"
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange is a send or regenerate between its tentative first phase and
// its settlement. It holds the send guard until Complete, Fail or Abandon.
type Exchange struct {
	*Ticket

	Kind ExchangeKind

	// Prompt is the user text to submit.
	Prompt string

	// UserKey is the local key of the optimistic user message (send only).
	UserKey string

	// NeedsIdentity is set when the session had no id at phase one.
	NeedsIdentity bool
}

// BeginSend validates text, takes the send guard and appends the user
// message immediately, before any network round trip.
func (s *Session) BeginSend(ctx context.Context, text string) (*Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	t, err := s.acquireLocked(ctx, GuardSend)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	msg := model.NewUserMessage(text)
	s.appendLocked(msg)
	x := &Exchange{
		Ticket:        t,
		Kind:          KindSend,
		Prompt:        text,
		UserKey:       msg.Key,
		NeedsIdentity: s.id.IsZero(),
	}
	s.mu.Unlock()
	s.notify()
	return x, nil
}

// BeginRegenerate finds the most recent user message, discards a trailing
// assistant reply and takes the send guard. The session must be identified
// and hold at least two messages; nothing is mutated when a precondition
// fails.
func (s *Session) BeginRegenerate(ctx context.Context) (*Exchange, error) {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if len(s.messages) < 2 {
		s.mu.Unlock()
		return nil, ErrNothingToRegenerate
	}
	idx := model.LastIndexOfRole(s.messages, model.RoleUser)
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrNothingToRegenerate
	}
	if s.id.IsZero() {
		s.mu.Unlock()
		return nil, ErrNotIdentified
	}

	t, err := s.acquireLocked(ctx, GuardSend)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	prompt := s.messages[idx].Content
	s.popTrailingLocked(model.RoleAssistant)
	x := &Exchange{
		Ticket: t,
		Kind:   KindRegenerate,
		Prompt: prompt,
	}
	s.mu.Unlock()
	s.notify()
	return x, nil
}

// Complete appends the assistant reply and releases the guard. It reports
// false, appending nothing, when the session has moved on.
func (x *Exchange) Complete(reply model.Message) bool {
	if reply.Role == "" {
		reply.Role = model.RoleAssistant
	}
	reply.Key = ""
	applied := x.AppendMessage(reply)
	x.Release()
	return applied
}

// Fail appends a system notice and releases the guard. It reports false,
// appending nothing, when the session has moved on.
func (x *Exchange) Fail(notice string) bool {
	applied := x.AppendMessage(model.NewSystemNotice(notice))
	x.Release()
	return applied
}

// Abandon releases the guard without appending anything.
func (x *Exchange) Abandon() {
	x.Release()
}
