// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the domain types exchanged with the conversation
// service and held by the client session: conversations, messages,
// attachments, feedback, generation settings and usage analytics.
//
// # Key Types
//
//   - Conversation: Full conversation state as returned by the service
//   - Summary: Id and title pair listed in the sidebar directory
//   - Message: Single message with role, content, optional id and feedback
//   - Attachment: Uploaded file descriptor with opaque service metadata
//   - Settings: System prompt, temperature and model variant
//   - ModelVariant: Fixed enumeration of generation variants
//   - ID: Opaque service identifier (numeric or string on the wire)
//
// # Usage
//
// Derive a title for a lazily created conversation:
//
//	title := model.DeriveTitle("Explain quantum physics in simple terms")
//	// "Explain quantum physics in sim..."
//
// Validate settings before saving:
//
//	s := model.DefaultSettings()
//	s.Temperature = 1.2
//	if err := s.Validate(); err != nil {
//	    return err
//	}
package model
