// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error variables for service status codes the client distinguishes.
var (
	// ErrRateLimited indicates the service rejected the request with 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the conversation or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyID indicates a call that needs a conversation id was given none.
	ErrEmptyID = errors.New("conversation id is required")
)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Status    int
	Detail    string
	RequestID string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("aura service error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("aura service error (HTTP %d): %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match status sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsRateLimited reports whether err carries a 429 status.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// errorBody is the service's error envelope. Detail is a string for
// application errors and a list for request validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// handleErrorResponse converts an error response into a *StatusError.
func handleErrorResponse(statusCode int, body []byte, requestID string) error {
	serr := &StatusError{Status: statusCode, RequestID: requestID}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			serr.Detail = s
		} else {
			serr.Detail = string(eb.Detail)
		}
		return serr
	}

	serr.Detail = strings.TrimSpace(string(body))
	if len(serr.Detail) > 200 {
		serr.Detail = serr.Detail[:200]
	}
	return serr
}
