// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/pkg/errors"

var (
	// ErrBusy indicates an operation of the same kind is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrEmptyMessage indicates a send with nothing but whitespace.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNothingToRegenerate indicates the history has no user message to
	// resubmit.
	ErrNothingToRegenerate = errors.New("nothing to regenerate")

	// ErrNotIdentified indicates the operation needs a persisted conversation.
	ErrNotIdentified = errors.New("conversation has no identity")

	// ErrAlreadyIdentified indicates an attempt to rebind a conversation id.
	ErrAlreadyIdentified = errors.New("conversation already has an identity")

	// ErrEmptyID indicates an attempt to bind an empty id.
	ErrEmptyID = errors.New("conversation id is empty")

	// ErrStale indicates the session moved to another conversation while
	// the operation was outstanding.
	ErrStale = errors.New("session changed")
)
