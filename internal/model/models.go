// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODEL VARIANTS
// =============================================================================

// ModelVariant identifies one of the generation variants offered by the
// service.
type ModelVariant string

const (
	ModelStandard ModelVariant = "aura-standard"
	ModelCreative ModelVariant = "aura-creative"
	ModelPrecise  ModelVariant = "aura-precise"

	// DefaultModel is used when a conversation has no selected model.
	DefaultModel = ModelStandard
)

// VariantInfo describes a model variant for pickers and help output.
type VariantInfo struct {
	Variant ModelVariant
	Short   string
	Label   string
}

// Variants lists every known variant in display order.
var Variants = []VariantInfo{
	{Variant: ModelStandard, Short: "standard", Label: "Gen Standard (Balanced)"},
	{Variant: ModelCreative, Short: "creative", Label: "Gen Creative (Exploratory)"},
	{Variant: ModelPrecise, Short: "precise", Label: "Gen Precise (Technical)"},
}

// String returns the wire name of the variant.
func (v ModelVariant) String() string {
	return string(v)
}

// IsValid reports whether v is a known variant.
func (v ModelVariant) IsValid() bool {
	for _, info := range Variants {
		if info.Variant == v {
			return true
		}
	}
	return false
}

// Label returns the display label of the variant.
func (v ModelVariant) Label() string {
	for _, info := range Variants {
		if info.Variant == v {
			return info.Label
		}
	}
	return string(v)
}

// Next returns the variant following v in display order, wrapping around.
func (v ModelVariant) Next() ModelVariant {
	for i, info := range Variants {
		if info.Variant == v {
			return Variants[(i+1)%len(Variants)].Variant
		}
	}
	return DefaultModel
}

// ParseModelVariant accepts either the wire name or the short name.
func ParseModelVariant(s string) (ModelVariant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, info := range Variants {
		if s == string(info.Variant) || s == info.Short {
			return info.Variant, nil
		}
	}
	return "", fmt.Errorf("unknown model variant %q (want standard, creative or precise)", s)
}

// =============================================================================
// SETTINGS
// =============================================================================

const (
	// DefaultTemperature is the sampling temperature of new conversations.
	DefaultTemperature = 0.7

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Settings are the per-conversation generation parameters.
type Settings struct {
	SystemPrompt string       `json:"system_prompt"`
	Temperature  float64      `json:"temperature"`
	Model        ModelVariant `json:"selected_model"`
}

// DefaultSettings returns the settings of an empty conversation.
func DefaultSettings() Settings {
	return Settings{
		SystemPrompt: "",
		Temperature:  DefaultTemperature,
		Model:        DefaultModel,
	}
}

// Validate checks temperature range and model variant.
func (s Settings) Validate() error {
	if s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
		return fmt.Errorf("temperature %.2f out of range [%.1f, %.1f]", s.Temperature, MinTemperature, MaxTemperature)
	}
	if !s.Model.IsValid() {
		return fmt.Errorf("unknown model variant %q", s.Model)
	}
	return nil
}

// Patch converts the settings into a partial conversation update.
func (s Settings) Patch() ConversationPatch {
	prompt := s.SystemPrompt
	temp := s.Temperature
	model := s.Model
	return ConversationPatch{
		SystemPrompt:  &prompt,
		Temperature:   &temp,
		SelectedModel: &model,
	}
}

// ConversationPatch is a partial update; nil fields are left unchanged.
type ConversationPatch struct {
	Title         *string       `json:"title,omitempty"`
	SystemPrompt  *string       `json:"system_prompt,omitempty"`
	Temperature   *float64      `json:"temperature,omitempty"`
	SelectedModel *ModelVariant `json:"selected_model,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ConversationPatch) IsEmpty() bool {
	return p.Title == nil && p.SystemPrompt == nil && p.Temperature == nil && p.SelectedModel == nil
}
