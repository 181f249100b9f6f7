// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/model"
)

// errorText prefers the service's detail message over the wrapped error.
func errorText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	return err.Error()
}

// parseID validates a conversation id argument.
func parseID(arg string) (model.ID, error) {
	id := model.ID(strings.TrimSpace(arg))
	if id.IsZero() {
		return "", errors.New("conversation id is required")
	}
	return id, nil
}
