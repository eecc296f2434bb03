// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
)

func newTestStore(t *testing.T) *ChatStore {
	t.Helper()
	store, err := NewChatStore(filepath.Join(t.TempDir(), "saved_chats"))
	require.NoError(t, err)
	return store
}

func sampleChat(id string) *chat.Chat {
	c := chat.New(id)
	c.Append(chat.Message{Role: chat.RoleUser, Content: "Hello", Timestamp: 1})
	c.Append(chat.Message{Role: chat.RoleAssistant, Content: "Hi there!", Timestamp: 2})
	return c
}

// =============================================================================
// LOAD / SAVE TESTS
// =============================================================================

func TestChatStore_LoadMissingIsFresh(t *testing.T) {
	store := newTestStore(t)

	res, err := store.Load("1735689600000")
	require.NoError(t, err)
	assert.True(t, res.Fresh())
	assert.False(t, res.Found())
	assert.Equal(t, "1735689600000", res.Chat.ID)
	assert.Empty(t, res.Chat.Messages)
	assert.Nil(t, res.Chat.Settings)
}

func TestChatStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	c := sampleChat("42")
	c.Settings = &chat.Settings{Temperature: chat.Float(0.2)}

	require.NoError(t, store.Save("42", c))
	assert.FileExists(t, filepath.Join(store.BaseDir, "chat_42.json"))

	res, err := store.Load("42")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, c.Messages, res.Chat.Messages)
	assert.Equal(t, 0.2, *res.Chat.Settings.Temperature)
}

func TestChatStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	c := sampleChat("7")
	require.NoError(t, store.Save("7", c))

	c.Append(chat.Message{Role: chat.RoleUser, Content: "again", Timestamp: 3})
	require.NoError(t, store.Save("7", c))

	res, err := store.Load("7")
	require.NoError(t, err)
	assert.Len(t, res.Chat.Messages, 3)
}

func TestChatStore_LoadCorruptIsStorageError(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.BaseDir, "chat_9.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := store.Load("9")
	require.Error(t, err)

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "load", serr.Op)
	assert.Equal(t, "9", serr.ID)
}

func TestChatStore_RejectsUnsafeIDs(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("../escape")
	assert.ErrorIs(t, err, chat.ErrInvalidID)

	err = store.Save("../escape", sampleChat("x"))
	assert.ErrorIs(t, err, chat.ErrInvalidID)

	err = store.Delete("a/b")
	assert.ErrorIs(t, err, chat.ErrInvalidID)
}

func TestChatStore_FileNameIsAuthoritative(t *testing.T) {
	store := newTestStore(t)
	c := sampleChat("other")
	require.NoError(t, store.Save("5", c))

	res, err := store.Load("5")
	require.NoError(t, err)
	assert.Equal(t, "5", res.Chat.ID)
}

// =============================================================================
// ENUMERATE TESTS
// =============================================================================

func TestChatStore_Enumerate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("1", sampleChat("1")))
	require.NoError(t, store.Save("2", sampleChat("2")))
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir, "chat_3.json"), []byte("garbage"), 0644))

	// noise that must be ignored
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir, ".tmp-123"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(store.BaseDir, "chat_dir.json"), 0755))

	entries, err := store.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	assert.NotNil(t, byID["1"].Chat)
	assert.NoError(t, byID["1"].Err)
	assert.NotNil(t, byID["2"].Chat)
	assert.Nil(t, byID["3"].Chat)
	assert.Error(t, byID["3"].Err)
}

func TestChatStore_EnumerateMissingDir(t *testing.T) {
	store := &ChatStore{BaseDir: filepath.Join(t.TempDir(), "absent"), Workers: 2}

	entries, err := store.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatStore_EnumerateManyWithSmallPool(t *testing.T) {
	store := newTestStore(t)
	store.Workers = 2
	for _, id := range []string{"10", "11", "12", "13", "14", "15", "16"} {
		require.NoError(t, store.Save(id, sampleChat(id)))
	}

	entries, err := store.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 7)
	for _, e := range entries {
		assert.NotNil(t, e.Chat, e.ID)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestChatStore_Delete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("1", sampleChat("1")))
	assert.True(t, store.Exists("1"))

	require.NoError(t, store.Delete("1"))
	assert.False(t, store.Exists("1"))

	err := store.Delete("1")
	assert.True(t, errors.Is(err, ErrChatNotFound))
}
