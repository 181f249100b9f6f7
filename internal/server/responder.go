// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"strings"

	"github.com/jeranaias/aura-tui/internal/model"
)

// Responder produces assistant replies.
type Responder interface {
	Reply(req ReplyRequest) string
}

// ReplyRequest carries everything a reply may depend on.
type ReplyRequest struct {
	Message  string
	Settings model.Settings
	// Context is the extracted text of the conversation's attachments
	Context string
}

// MockResponder answers deterministically from the request text, the
// selected model and the temperature. It never calls out.
type MockResponder struct{}

// maxContextLines bounds the document lines quoted in a reply.
const maxContextLines = 5

// Reply implements Responder.
func (MockResponder) Reply(req ReplyRequest) string {
	variant := req.Settings.Model
	if variant == "" {
		variant = model.DefaultModel
	}
	prefix := fmt.Sprintf("[%s] ", variant)

	var behavior strings.Builder
	switch {
	case strings.Contains(string(variant), "creative"):
		behavior.WriteString("I'm feeling creative! ")
	case strings.Contains(string(variant), "precise"):
		behavior.WriteString("Precisely: ")
	}

	switch {
	case req.Settings.Temperature > 1.5:
		behavior.WriteString("(Highly Random) ")
	case req.Settings.Temperature < 0.3:
		behavior.WriteString("(Deterministic) ")
	}

	tool, toolOutput := detectTool(req.Message)
	if tool != "" {
		fmt.Fprintf(&behavior, "[System: Used %s] ", tool)
	}

	if req.Context != "" {
		quoted := relevantLines(req.Context, req.Message)
		resp := fmt.Sprintf("%s%sBased on the documents: '%s', here is my response to '%s'",
			prefix, behavior.String(), quoted, req.Message)
		if tool != "" {
			resp = fmt.Sprintf("%s%sI used the %s. Result: %s. Based on that and your documents: %s",
				prefix, behavior.String(), tool, toolOutput, resp)
		}
		return resp
	}

	if tool != "" {
		return fmt.Sprintf("%s%sI used the %s. Result: %s", prefix, behavior.String(), tool, toolOutput)
	}
	return fmt.Sprintf("%s%sThis is a mock response to: '%s'", prefix, behavior.String(), req.Message)
}

func detectTool(message string) (name, output string) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "search"):
		return "Web Search Tool", fmt.Sprintf("Successfully searched for '%s'. Found 3 relevant results.", message)
	case strings.Contains(lower, "weather"):
		return "Weather API", "Current weather: 72°F, Sunny."
	}
	return "", ""
}

// relevantLines picks context lines sharing a word longer than three
// letters with the message.
func relevantLines(context, message string) string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(message)) {
		if len([]rune(w)) > 3 {
			keywords = append(keywords, w)
		}
	}

	var picked []string
	for _, line := range strings.Split(context, "\n") {
		lower := strings.ToLower(line)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				picked = append(picked, line)
				break
			}
		}
		if len(picked) == maxContextLines {
			break
		}
	}
	if len(picked) == 0 {
		return "general context"
	}
	return strings.Join(picked, "\n")
}

// CountTokens is the word-count token estimate used for usage metrics.
func CountTokens(texts ...string) int {
	n := 0
	for _, t := range texts {
		n += len(strings.Fields(t))
	}
	return n
}
