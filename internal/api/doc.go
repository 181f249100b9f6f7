// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Aura conversation service.
//
// The client is an explicitly constructed value: base URL, timeout, pacing
// and logger are set per instance, so tests point it at an httptest server
// and the application can run several against different services.
//
// # Error Handling
//
// Non-2xx responses are returned as *StatusError. Rate-limit and not-found
// responses also match the ErrRateLimited and ErrNotFound sentinels:
//
//	msg, err := client.SendMessage(ctx, id, "hello")
//	if errors.Is(err, api.ErrRateLimited) {
//	    // 429 Too Many Requests
//	}
//
// # Usage
//
//	client := api.NewClient("http://localhost:8002").
//	    WithTimeout(30 * time.Second).
//	    WithRateLimit(2, 4)
//	conv, err := client.CreateConversation(ctx, "New Chat")
package api
