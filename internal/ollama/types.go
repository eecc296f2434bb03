// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

// Roles understood by /api/chat.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the conversation sent to /api/chat.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sampling holds the generation parameters Ollama accepts under "options".
type Sampling struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // max tokens
}

// chatBody is the wire form of a request; Stream is always false.
type chatBody struct {
	Model    string    `json:"model"`
	Messages []Turn    `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Sampling `json:"options,omitempty"`
}

// Reply is the non-streaming /api/chat response.
type Reply struct {
	Model      string `json:"model"`
	Message    Turn   `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
	EvalCount  int    `json:"eval_count,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}
