// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Settings holds generation parameters. A nil field means "inherit".
type Settings struct {
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"maxTokens,omitempty"`
	TopK         *int     `json:"topK,omitempty"`
	TopP         *float64 `json:"topP,omitempty"`
	SystemPrompt *string  `json:"systemPrompt,omitempty"`
}

// Float returns a pointer to v, for building Settings literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// IsZero reports whether no field is set.
func (s Settings) IsZero() bool {
	return s.Temperature == nil && s.MaxTokens == nil && s.TopK == nil &&
		s.TopP == nil && s.SystemPrompt == nil
}

// Clone returns a copy that shares no pointers with s.
func (s Settings) Clone() Settings {
	var out Settings
	if s.Temperature != nil {
		out.Temperature = Float(*s.Temperature)
	}
	if s.MaxTokens != nil {
		out.MaxTokens = Int(*s.MaxTokens)
	}
	if s.TopK != nil {
		out.TopK = Int(*s.TopK)
	}
	if s.TopP != nil {
		out.TopP = Float(*s.TopP)
	}
	if s.SystemPrompt != nil {
		out.SystemPrompt = String(*s.SystemPrompt)
	}
	return out
}

// Merge returns s with every unset field filled from fallback.
// Fields already set on s win.
func (s Settings) Merge(fallback Settings) Settings {
	out := s.Clone()
	fb := fallback.Clone()
	if out.Temperature == nil {
		out.Temperature = fb.Temperature
	}
	if out.MaxTokens == nil {
		out.MaxTokens = fb.MaxTokens
	}
	if out.TopK == nil {
		out.TopK = fb.TopK
	}
	if out.TopP == nil {
		out.TopP = fb.TopP
	}
	if out.SystemPrompt == nil {
		out.SystemPrompt = fb.SystemPrompt
	}
	return out
}

// Effective merges layers in priority order, highest first. Nil layers are skipped.
func Effective(layers ...*Settings) Settings {
	var out Settings
	for _, l := range layers {
		if l == nil {
			continue
		}
		out = out.Merge(*l)
	}
	return out
}

// TemperatureOr returns the temperature or def when unset.
func (s Settings) TemperatureOr(def float64) float64 {
	if s.Temperature == nil {
		return def
	}
	return *s.Temperature
}

// MaxTokensOr returns the token limit or def when unset.
func (s Settings) MaxTokensOr(def int) int {
	if s.MaxTokens == nil {
		return def
	}
	return *s.MaxTokens
}

// TopKOr returns top-k or def when unset.
func (s Settings) TopKOr(def int) int {
	if s.TopK == nil {
		return def
	}
	return *s.TopK
}

// TopPOr returns top-p or def when unset.
func (s Settings) TopPOr(def float64) float64 {
	if s.TopP == nil {
		return def
	}
	return *s.TopP
}

// SystemPromptOr returns the system prompt or def when unset.
func (s Settings) SystemPromptOr(def string) string {
	if s.SystemPrompt == nil {
		return def
	}
	return *s.SystemPrompt
}
