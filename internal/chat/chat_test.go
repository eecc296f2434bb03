// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	long := "This is a fairly long first message that keeps going"

	tests := []struct {
		name string
		chat *Chat
		want string
	}{
		{
			name: "explicit title wins",
			chat: &Chat{ID: "1", Title: "Trip planning", Messages: []Message{{Role: RoleUser, Content: long}}},
			want: "Trip planning",
		},
		{
			name: "first message truncated",
			chat: &Chat{ID: "1", Messages: []Message{{Role: RoleUser, Content: long}}},
			want: long[:30] + "...",
		},
		{
			name: "short first message still gets ellipsis",
			chat: &Chat{ID: "1", Messages: []Message{{Role: RoleUser, Content: "hi"}}},
			want: "hi...",
		},
		{
			name: "no title no messages",
			chat: &Chat{ID: "1735689600000"},
			want: "Chat 1735689600000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.chat))
		})
	}
}

func TestDeriveTitle_KeepsContentAsWritten(t *testing.T) {
	// decomposed e + combining acute is not composed
	c := &Chat{ID: "1", Messages: []Message{{Role: RoleUser, Content: "Cafe\u0301"}}}
	assert.Equal(t, "Cafe\u0301...", DeriveTitle(c))
}

func TestDeriveTitle_DoesNotSplitCombiningSequence(t *testing.T) {
	base := strings.Repeat("a", TitleRunes-1)
	c := &Chat{ID: "1", Messages: []Message{{Role: RoleUser, Content: base + "e\u0301\u0323xyz"}}}

	assert.Equal(t, base+"e\u0301\u0323...", DeriveTitle(c))
}

func TestDeriveTitle_CountsCharactersNotBytes(t *testing.T) {
	content := strings.Repeat("é", 40)
	c := &Chat{ID: "1", Messages: []Message{{Role: RoleUser, Content: content}}}

	got := DeriveTitle(c)
	assert.Equal(t, strings.Repeat("é", 30)+"...", got)
}

// =============================================================================
// ID TESTS
// =============================================================================

func TestIDGenerator_StrictlyIncreasingWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1735689600000)
	g := NewIDGeneratorWithClock(func() time.Time { return fixed })

	a := g.Next()
	b := g.Next()
	c := g.Next()

	assert.Equal(t, "1735689600000", a)
	assert.Equal(t, "1735689600001", b)
	assert.Equal(t, "1735689600002", c)
}

func TestIDGenerator_ClockGoingBackwards(t *testing.T) {
	now := time.UnixMilli(2000)
	g := NewIDGeneratorWithClock(func() time.Time { return now })

	first := g.Next()
	now = time.UnixMilli(1000)
	second := g.Next()

	assert.Greater(t, ParseIDTimestamp(second), ParseIDTimestamp(first))
}

func TestIDGenerator_Observe(t *testing.T) {
	g := NewIDGeneratorWithClock(func() time.Time { return time.UnixMilli(100) })
	g.Observe("500")
	g.Observe("not-numeric")

	assert.Equal(t, "501", g.Next())
}

func TestIDGenerator_ConcurrentUnique(t *testing.T) {
	g := NewIDGenerator()
	const n = 200

	var mu sync.Mutex
	seen := make(map[string]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestValidateID(t *testing.T) {
	valid := []string{"1735689600000", "abc_DEF-123", strings.Repeat("a", 64)}
	for _, id := range valid {
		assert.NoError(t, ValidateID(id), id)
	}

	invalid := []string{"", "../etc/passwd", "a b", "chat.json", strings.Repeat("a", 65), "é"}
	for _, id := range invalid {
		err := ValidateID(id)
		require.Error(t, err, id)
		assert.ErrorIs(t, err, ErrInvalidID)
	}
}

func TestParseIDTimestamp(t *testing.T) {
	assert.Equal(t, int64(1735689600000), ParseIDTimestamp("1735689600000"))
	assert.Equal(t, int64(0), ParseIDTimestamp("custom-id"))
	assert.Equal(t, int64(0), ParseIDTimestamp("-5"))
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestEffective_PerFieldPriority(t *testing.T) {
	override := &Settings{Temperature: Float(0.1)}
	stored := &Settings{Temperature: Float(0.5), TopK: Int(10)}
	defaults := &Settings{
		Temperature:  Float(0.7),
		MaxTokens:    Int(4096),
		TopK:         Int(40),
		TopP:         Float(0.95),
		SystemPrompt: String("be helpful"),
	}

	eff := Effective(override, stored, defaults)

	assert.Equal(t, 0.1, *eff.Temperature)
	assert.Equal(t, 10, *eff.TopK)
	assert.Equal(t, 4096, *eff.MaxTokens)
	assert.Equal(t, 0.95, *eff.TopP)
	assert.Equal(t, "be helpful", *eff.SystemPrompt)
}

func TestEffective_NilLayers(t *testing.T) {
	eff := Effective(nil, nil)
	assert.True(t, eff.IsZero())
	assert.Equal(t, 0.7, eff.TemperatureOr(0.7))
	assert.Equal(t, "x", eff.SystemPromptOr("x"))
}

func TestSettings_CloneIsIndependent(t *testing.T) {
	s := Settings{Temperature: Float(0.3)}
	c := s.Clone()
	*c.Temperature = 0.9

	assert.Equal(t, 0.3, *s.Temperature)
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_JSONShape(t *testing.T) {
	c := New("1735689600000")
	c.Append(Message{Role: RoleUser, Content: "hello", Timestamp: 1})
	c.Settings = &Settings{MaxTokens: Int(100), SystemPrompt: String("sys")}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "1735689600000", raw["id"])
	assert.NotContains(t, raw, "title")

	settings := raw["settings"].(map[string]any)
	assert.Equal(t, float64(100), settings["maxTokens"])
	assert.Equal(t, "sys", settings["systemPrompt"])
	assert.NotContains(t, settings, "temperature")
}

func TestChat_EmptyMessagesEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(New("1"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"messages":[]`)
}

func TestChat_CloneDoesNotShareHistory(t *testing.T) {
	c := New("1")
	c.Append(NewMessage(RoleUser, "a"))
	clone := c.Clone()
	clone.Append(NewMessage(RoleAssistant, "b"))
	clone.Messages[0].Content = "changed"

	assert.Len(t, c.Messages, 1)
	assert.Equal(t, "a", c.Messages[0].Content)
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("system").Valid())
}
