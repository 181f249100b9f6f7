// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"math"
	"sort"
)

// Analytics is the aggregate usage summary reported by the service.
type Analytics struct {
	TotalMessages     int            `json:"total_messages"`
	TotalTokens       int            `json:"total_tokens"`
	ModelDistribution map[string]int `json:"model_distribution"`
	PositiveFeedback  int            `json:"positive_feedback_count"`
	NegativeFeedback  int            `json:"negative_feedback_count"`
}

// Satisfaction returns the rounded share of positive feedback in percent,
// or 0 when nothing was rated.
func (a Analytics) Satisfaction() int {
	total := a.PositiveFeedback + a.NegativeFeedback
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(a.PositiveFeedback) / float64(total) * 100))
}

// ModelUsage is one row of the per-model distribution.
type ModelUsage struct {
	Model string
	Count int
}

// SortedUsage returns the model distribution ordered by count descending,
// then model name.
func (a Analytics) SortedUsage() []ModelUsage {
	rows := make([]ModelUsage, 0, len(a.ModelDistribution))
	for m, n := range a.ModelDistribution {
		rows = append(rows, ModelUsage{Model: m, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Model < rows[j].Model
	})
	return rows
}
