// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

func withMessages(id string, contents ...string) *chat.Chat {
	c := chat.New(id)
	for _, content := range contents {
		c.Append(chat.Message{Role: chat.RoleUser, Content: content, Timestamp: 1})
	}
	return c
}

func TestIndex_ListSortedAndSkipsCorrupt(t *testing.T) {
	store, err := storage.NewChatStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("1000", withMessages("1000", "oldest")))
	require.NoError(t, store.Save("3000", withMessages("3000", "newest", "reply")))
	require.NoError(t, store.Save("2000", withMessages("2000")))
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir, "chat_4000.json"), []byte("{"), 0644))

	core, logs := observer.New(zap.WarnLevel)
	idx := New(store, zap.New(core))

	list, err := idx.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "3000", list[0].ID)
	assert.Equal(t, "newest...", list[0].Title)
	assert.Equal(t, int64(3000), list[0].Timestamp)
	assert.Equal(t, 2, list[0].MessageCount)

	assert.Equal(t, "2000", list[1].ID)
	assert.Equal(t, "Chat 2000", list[1].Title)

	assert.Equal(t, "1000", list[2].ID)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "4000", logs.All()[0].ContextMap()["chat_id"])
}

func TestIndex_DeletedChatDisappears(t *testing.T) {
	store, err := storage.NewChatStore(t.TempDir())
	require.NoError(t, err)
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, store.Save(id, withMessages(id, "m"+id)))
	}
	idx := New(store, nil)

	require.NoError(t, store.Delete("2"))

	list, err := idx.List(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"3", "1"}, ids)
}

func TestSort_TiesByIDAscendingAndNonNumericLast(t *testing.T) {
	summaries := []Summary{
		Summarize(withMessages("zeta")),
		Summarize(withMessages("500")),
		Summarize(withMessages("alpha")),
		Summarize(withMessages("900")),
	}

	Sort(summaries)

	got := []string{summaries[0].ID, summaries[1].ID, summaries[2].ID, summaries[3].ID}
	assert.Equal(t, []string{"900", "500", "alpha", "zeta"}, got)
	assert.Equal(t, int64(0), summaries[2].Timestamp)
}

type failingEnumerator struct{}

func (failingEnumerator) Enumerate(context.Context) ([]storage.Entry, error) {
	return nil, errors.New("disk gone")
}

func TestIndex_EnumerateFailure(t *testing.T) {
	_, err := New(failingEnumerator{}, zap.NewNop()).List(context.Background())
	assert.Error(t, err)
}
