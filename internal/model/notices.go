// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// User-facing texts shared by the terminal and line interfaces.
const (
	NoticeRateLimited      = "Rate limit exceeded. Please wait a moment before sending more messages."
	NoticeSendFailed       = "Error: Failed to get response."
	NoticeRegenerateFailed = "Error: Failed to regenerate."

	PromptConfirmDelete = "Are you sure you want to delete this conversation?"
)

// StarterPrompts are offered on an empty conversation.
var StarterPrompts = []string{
	"Explain quantum physics",
	"Write a professional email",
	"Debug a Python script",
	"Summarize this article",
}
