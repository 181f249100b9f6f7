// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/jeranaias/aura-tui/internal/model"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the client-held state of the conversation currently displayed.
type Session struct {
	mu sync.Mutex

	// Conversation state
	id          model.ID
	title       string
	messages    []model.Message
	attachments []model.Attachment
	settings    model.Settings

	// Busy guards, scoped to the current generation
	sending   bool
	uploading bool

	// generation advances on every Open and Reset.
	generation uint64
	// switchSeq orders switch requests; only the latest may open.
	switchSeq uint64

	// In-flight operation contexts, cancelled when the generation moves on
	nextTicket uint64
	inflight   map[uint64]context.CancelFunc

	listeners  map[int]func()
	nextListen int
}

// State is an immutable copy of the session for rendering.
type State struct {
	ID          model.ID
	Title       string
	Messages    []model.Message
	Attachments []model.Attachment
	Settings    model.Settings
	Sending     bool
	Uploading   bool
	Generation  uint64
}

// IsEmpty reports whether the state has no identity and no history.
func (s State) IsEmpty() bool {
	return s.ID.IsZero() && len(s.Messages) == 0 && len(s.Attachments) == 0
}

// Message returns the message with the given local key.
func (s State) Message(key string) (model.Message, bool) {
	for _, m := range s.Messages {
		if m.Key == key {
			return m, true
		}
	}
	return model.Message{}, false
}

// New creates an empty session.
func New() *Session {
	return &Session{
		settings:  model.DefaultSettings(),
		inflight:  make(map[uint64]context.CancelFunc),
		listeners: make(map[int]func()),
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the conversation identity, empty when unidentified.
func (s *Session) ID() model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Generation returns the current generation counter.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Settings returns the locally held generation settings.
func (s *Session) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// IsSending reports whether a send or regenerate is in flight.
func (s *Session) IsSending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// IsUploading reports whether an upload is in flight.
func (s *Session) IsUploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:          s.id,
		Title:       s.title,
		Messages:    make([]model.Message, len(s.messages)),
		Attachments: make([]model.Attachment, len(s.attachments)),
		Settings:    s.settings,
		Sending:     s.sending,
		Uploading:   s.uploading,
		Generation:  s.generation,
	}
	for i, m := range s.messages {
		st.Messages[i] = m.Clone()
	}
	for i, a := range s.attachments {
		st.Attachments[i] = a.Clone()
	}
	return st
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Open replaces every field with the fetched conversation. Missing messages
// become an empty history and missing settings fall back to defaults.
// In-flight operations of the previous generation are cancelled and their
// busy guards cleared.
func (s *Session) Open(conv *model.Conversation) {
	s.mu.Lock()
	s.openLocked(conv)
	s.mu.Unlock()
	s.notify()
}

// BeginSwitch registers a switch request and returns its sequence number.
func (s *Session) BeginSwitch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switchSeq++
	return s.switchSeq
}

// OpenIfLatest opens conv only if seq is still the most recent switch
// request and no Reset happened since. It reports whether it opened.
func (s *Session) OpenIfLatest(seq uint64, conv *model.Conversation) bool {
	s.mu.Lock()
	if seq != s.switchSeq {
		s.mu.Unlock()
		return false
	}
	s.openLocked(conv)
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *Session) openLocked(conv *model.Conversation) {
	s.advanceLocked()

	s.id = conv.ID
	s.title = conv.Title
	s.settings = conv.Settings()

	s.messages = make([]model.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		m = m.Clone()
		m.EnsureKey()
		s.messages = append(s.messages, m)
	}
	s.attachments = make([]model.Attachment, 0, len(conv.Attachments))
	for _, a := range conv.Attachments {
		s.attachments = append(s.attachments, a.Clone())
	}
}

// Reset clears the session to the empty-conversation defaults. Pending
// switch requests are superseded.
func (s *Session) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Session) resetLocked() {
	s.advanceLocked()
	s.switchSeq++
	s.id = ""
	s.title = ""
	s.messages = nil
	s.attachments = nil
	s.settings = model.DefaultSettings()
}

// ResetIfID resets the session only if it currently holds id. It reports
// whether it reset.
func (s *Session) ResetIfID(id model.ID) bool {
	s.mu.Lock()
	if id.IsZero() || s.id != id {
		s.mu.Unlock()
		return false
	}
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
	return true
}

// advanceLocked starts a new generation: cancels every in-flight operation
// and clears both busy guards.
func (s *Session) advanceLocked() {
	s.generation++
	for seq, cancel := range s.inflight {
		cancel()
		delete(s.inflight, seq)
	}
	s.sending = false
	s.uploading = false
}

// AppendMessage inserts msg at the tail. The role is not validated against
// the previous message.
func (s *Session) AppendMessage(msg model.Message) {
	s.mu.Lock()
	s.appendLocked(msg)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) appendLocked(msg model.Message) {
	msg.EnsureKey()
	s.messages = append(s.messages, msg)
}

// PopTrailingIf removes the tail message only if it has the given role.
// It reports whether a message was removed.
func (s *Session) PopTrailingIf(role model.Role) bool {
	s.mu.Lock()
	popped := s.popTrailingLocked(role)
	s.mu.Unlock()
	if popped {
		s.notify()
	}
	return popped
}

func (s *Session) popTrailingLocked(role model.Role) bool {
	n := len(s.messages)
	if n == 0 || s.messages[n-1].Role != role {
		return false
	}
	s.messages = s.messages[:n-1]
	return true
}

// SetID binds an unidentified session to a newly created conversation.
func (s *Session) SetID(id model.ID) error {
	s.mu.Lock()
	err := s.setIDLocked(id, "")
	s.mu.Unlock()
	if err == nil {
		s.notify()
	}
	return err
}

func (s *Session) setIDLocked(id model.ID, title string) error {
	if id.IsZero() {
		return ErrEmptyID
	}
	if !s.id.IsZero() {
		return ErrAlreadyIdentified
	}
	s.id = id
	if title != "" {
		s.title = title
	}
	return nil
}

// SetSettings replaces the locally edited settings. They are persisted only
// by an explicit save.
func (s *Session) SetSettings(settings model.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.notify()
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Subscribe registers fn to run after every state change. Listeners run on
// the mutating goroutine without the session lock held. The returned
// function removes the listener.
func (s *Session) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.nextListen
	s.nextListen++
	s.listeners[key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, key)
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
