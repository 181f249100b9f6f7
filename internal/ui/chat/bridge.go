// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/session"
)

// ErrNotAttached is returned by Confirm before a program is attached.
var ErrNotAttached = errors.New("chat: no program attached")

// Bridge delivers events from other goroutines to a running program. It is
// created before the program so it can serve as the controller's
// confirmation step.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge creates an unattached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the delivery function, normally (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

// Send delivers msg. It is dropped when nothing is attached.
func (b *Bridge) Send(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// Confirm shows a confirmation dialog and waits for the answer.
func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	if !b.Send(ConfirmRequestMsg{Prompt: prompt, Reply: reply}) {
		return false, ErrNotAttached
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Watch forwards session and directory changes as SessionChangedMsg and
// DirectoryChangedMsg. The returned function stops forwarding.
//
// Notifications may fire inside Update (a new chat resets the session), so
// delivery happens on its own goroutine. The messages carry no state; the
// model reads a fresh snapshot when it handles them.
func (b *Bridge) Watch(sess *session.Session, dir *directory.Directory) func() {
	stopSession := sess.Subscribe(func() { go b.Send(SessionChangedMsg{}) })
	stopDir := dir.Subscribe(func() { go b.Send(DirectoryChangedMsg{}) })
	return func() {
		stopSession()
		stopDir()
	}
}
