// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// Attachment is a file attached to a conversation's context. Fields other
// than the filename are owned by the service and kept verbatim in Metadata.
type Attachment struct {
	ID        ID
	Filename  string
	CreatedAt Timestamp
	Metadata  map[string]any
}

// UnmarshalJSON keeps every returned field in Metadata.
func (a *Attachment) UnmarshalJSON(data []byte) error {
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("decode attachment: %w", err)
	}

	var known struct {
		ID        ID        `json:"id"`
		Filename  string    `json:"filename"`
		CreatedAt Timestamp `json:"created_at"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("decode attachment: %w", err)
	}

	a.ID = known.ID
	a.Filename = known.Filename
	a.CreatedAt = known.CreatedAt
	a.Metadata = meta
	return nil
}

// MarshalJSON writes the metadata back with the known fields applied.
func (a Attachment) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Metadata)+3)
	for k, v := range a.Metadata {
		out[k] = v
	}
	out["filename"] = a.Filename
	if !a.ID.IsZero() {
		out["id"] = a.ID
	}
	if !a.CreatedAt.IsZero() {
		out["created_at"] = a.CreatedAt
	}
	return json.Marshal(out)
}

// Clone returns a copy with an independent metadata map.
func (a Attachment) Clone() Attachment {
	if a.Metadata != nil {
		meta := make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			meta[k] = v
		}
		a.Metadata = meta
	}
	return a
}
