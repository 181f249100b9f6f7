// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/aura-tui/internal/model"
)

func TestMockResponder_Reply(t *testing.T) {
	settings := func(v model.ModelVariant, temp float64) model.Settings {
		return model.Settings{Model: v, Temperature: temp}
	}

	tests := []struct {
		name string
		req  ReplyRequest
		want string
	}{
		{
			name: "standard",
			req:  ReplyRequest{Message: "hi", Settings: settings(model.ModelStandard, 0.7)},
			want: "[aura-standard] This is a mock response to: 'hi'",
		},
		{
			name: "creative and hot",
			req:  ReplyRequest{Message: "hi", Settings: settings(model.ModelCreative, 1.9)},
			want: "[aura-creative] I'm feeling creative! (Highly Random) This is a mock response to: 'hi'",
		},
		{
			name: "precise and cold",
			req:  ReplyRequest{Message: "hi", Settings: settings(model.ModelPrecise, 0.1)},
			want: "[aura-precise] Precisely: (Deterministic) This is a mock response to: 'hi'",
		},
		{
			name: "weather tool",
			req:  ReplyRequest{Message: "Weather today?", Settings: settings(model.ModelStandard, 0.7)},
			want: "[aura-standard] [System: Used Weather API] I used the Weather API. Result: Current weather: 72°F, Sunny.",
		},
		{
			name: "document context",
			req: ReplyRequest{
				Message:  "what about bananas",
				Settings: settings(model.ModelStandard, 0.7),
				Context:  "apples are red\nbananas are yellow",
			},
			want: "[aura-standard] Based on the documents: 'bananas are yellow', here is my response to 'what about bananas'",
		},
		{
			name: "unrelated context",
			req: ReplyRequest{
				Message:  "hi",
				Settings: settings(model.ModelStandard, 0.7),
				Context:  "apples are red",
			},
			want: "[aura-standard] Based on the documents: 'general context', here is my response to 'hi'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MockResponder{}.Reply(tt.req))
		})
	}
}

func TestMockResponder_SearchWithContext(t *testing.T) {
	got := MockResponder{}.Reply(ReplyRequest{
		Message:  "search reports",
		Settings: model.DefaultSettings(),
		Context:  "quarterly reports attached",
	})
	assert.True(t, strings.HasPrefix(got, "[aura-standard] [System: Used Web Search Tool] I used the Web Search Tool."))
	assert.Contains(t, got, "quarterly reports attached")
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens())
	assert.Equal(t, 5, CountTokens("one two", "  three four five "))
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "line one\nline two", ExtractText("notes.txt", []byte("line one\r\nline two")))
	assert.Equal(t, "café", ExtractText("menu.md", []byte("café")))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.True(t, strings.HasPrefix(ExtractText("chart.png", png), "[Image: chart.png, image/png"))

	assert.Equal(t, "[Binary/Unsupported file content - Name: blob.bin]",
		ExtractText("blob.bin", []byte{0x00, 0x01, 0xff}))
}
