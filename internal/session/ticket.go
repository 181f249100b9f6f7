// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/jeranaias/aura-tui/internal/model"
)

// Guard selects which busy flag an operation holds.
type Guard int

const (
	// GuardNone holds no flag; the ticket only scopes the generation.
	GuardNone Guard = iota
	// GuardSend is shared by send and regenerate.
	GuardSend
	// GuardUpload gates repeat uploads only.
	GuardUpload
)

// String returns the guard name for logs.
func (g Guard) String() string {
	switch g {
	case GuardSend:
		return "send"
	case GuardUpload:
		return "upload"
	default:
		return "none"
	}
}

// =============================================================================
// TICKET
// =============================================================================

// Ticket scopes an asynchronous operation to the generation it was issued
// under. Mutations through a ticket are applied only while that generation
// is current; otherwise they are discarded and report false.
type Ticket struct {
	s      *Session
	gen    uint64
	seq    uint64
	guard  Guard
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Acquire takes the given busy guard and returns a ticket for the current
// generation. The ticket's context is cancelled when the session opens
// another conversation or resets.
func (s *Session) Acquire(ctx context.Context, guard Guard) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquireLocked(ctx, guard)
}

func (s *Session) acquireLocked(ctx context.Context, guard Guard) (*Ticket, error) {
	switch guard {
	case GuardSend:
		if s.sending {
			return nil, ErrBusy
		}
		s.sending = true
	case GuardUpload:
		if s.uploading {
			return nil, ErrBusy
		}
		s.uploading = true
	}

	if ctx == nil {
		ctx = context.Background()
	}
	tctx, cancel := context.WithCancel(ctx)
	s.nextTicket++
	t := &Ticket{
		s:      s,
		gen:    s.generation,
		seq:    s.nextTicket,
		guard:  guard,
		ctx:    tctx,
		cancel: cancel,
	}
	s.inflight[t.seq] = cancel
	return t, nil
}

// Context returns the operation's context.
func (t *Ticket) Context() context.Context {
	return t.ctx
}

// Generation returns the generation the ticket was issued under.
func (t *Ticket) Generation() uint64 {
	return t.gen
}

// Current reports whether the session is still on the ticket's generation.
func (t *Ticket) Current() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.gen == t.s.generation
}

// ID returns the session's identity if the ticket is current.
func (t *Ticket) ID() (model.ID, bool) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.gen != t.s.generation {
		return "", false
	}
	return t.s.id, true
}

// Release clears the ticket's busy guard if its generation is still current
// and frees its context. Safe to call more than once.
func (t *Ticket) Release() {
	t.once.Do(func() {
		t.s.mu.Lock()
		released := t.releaseLocked()
		t.s.mu.Unlock()
		t.cancel()
		if released {
			t.s.notify()
		}
	})
}

func (t *Ticket) releaseLocked() bool {
	delete(t.s.inflight, t.seq)
	if t.gen != t.s.generation {
		return false
	}
	switch t.guard {
	case GuardSend:
		t.s.sending = false
		return true
	case GuardUpload:
		t.s.uploading = false
		return true
	}
	return false
}

// apply runs fn under the session lock when the ticket is current and
// notifies listeners if fn reports a change.
func (t *Ticket) apply(fn func(s *Session) bool) bool {
	t.s.mu.Lock()
	if t.gen != t.s.generation {
		t.s.mu.Unlock()
		return false
	}
	changed := fn(t.s)
	t.s.mu.Unlock()
	if changed {
		t.s.notify()
	}
	return true
}

// Bind performs the lazy absent-to-present identity transition for the
// ticket's generation. Binding the id the session already carries is a
// no-op, so operations sharing one creation may all bind it.
func (t *Ticket) Bind(id model.ID, title string) error {
	var err error
	ok := t.apply(func(s *Session) bool {
		if !s.id.IsZero() && s.id == id {
			return false
		}
		err = s.setIDLocked(id, title)
		return err == nil
	})
	if !ok {
		return ErrStale
	}
	return err
}

// AppendMessage appends msg if the ticket is current.
func (t *Ticket) AppendMessage(msg model.Message) bool {
	return t.apply(func(s *Session) bool {
		s.appendLocked(msg)
		return true
	})
}

// AddAttachment appends att if the ticket is current. The attachment list
// only ever grows.
func (t *Ticket) AddAttachment(att model.Attachment) bool {
	return t.apply(func(s *Session) bool {
		s.attachments = append(s.attachments, att.Clone())
		return true
	})
}

// SetFeedback replaces the feedback of the message with the given id if
// the ticket is current. A second rating overwrites the first.
func (t *Ticket) SetFeedback(id model.ID, fb model.Feedback) bool {
	return t.apply(func(s *Session) bool {
		for i := range s.messages {
			if s.messages[i].ID == id {
				rating := fb
				s.messages[i].Feedback = &rating
				return true
			}
		}
		return false
	})
}
