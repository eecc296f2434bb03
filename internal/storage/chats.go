// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/util"
)

const (
	filePrefix = "chat_"
	fileSuffix = ".json"
)

// =============================================================================
// LOAD RESULT
// =============================================================================

// LoadResult is the outcome of ChatStore.Load. A missing record is not an
// error: it yields a Fresh result holding an empty chat with the requested id.
type LoadResult struct {
	Chat  *chat.Chat
	found bool
}

// FoundResult wraps a chat read from storage.
func FoundResult(c *chat.Chat) LoadResult {
	return LoadResult{Chat: c, found: true}
}

// FreshResult returns the result for an id with no stored record.
func FreshResult(id string) LoadResult {
	return LoadResult{Chat: chat.New(id)}
}

// Found reports whether the chat was read from disk.
func (r LoadResult) Found() bool { return r.found }

// Fresh reports whether the chat is a new, unsaved skeleton.
func (r LoadResult) Fresh() bool { return !r.found }

// Entry is one record reported by Enumerate. Exactly one of Chat and Err is set.
type Entry struct {
	ID   string
	Chat *chat.Chat
	Err  error
}

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore persists chats as one JSON file per chat.
type ChatStore struct {
	// BaseDir is the directory holding chat_<id>.json files.
	BaseDir string

	// Workers bounds concurrent file reads during Enumerate.
	Workers int
}

// NewChatStore creates a store rooted at dir, creating the directory if needed.
func NewChatStore(dir string) (*ChatStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Op: "init", Err: err}
	}
	return &ChatStore{
		BaseDir: dir,
		Workers: runtime.GOMAXPROCS(0) * 2,
	}, nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads a chat. A missing file yields a Fresh result; an unreadable or
// corrupt file yields a *StorageError.
func (s *ChatStore) Load(id string) (LoadResult, error) {
	if err := chat.ValidateID(id); err != nil {
		return LoadResult{}, &StorageError{Op: "load", ID: id, Err: err}
	}

	c, err := s.read(id)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return FreshResult(id), nil
		}
		return LoadResult{}, &StorageError{Op: "load", ID: id, Err: err}
	}
	return FoundResult(c), nil
}

// Save persists the full chat record under id, replacing any prior version.
func (s *ChatStore) Save(id string, c *chat.Chat) error {
	if err := chat.ValidateID(id); err != nil {
		return &StorageError{Op: "save", ID: id, Err: err}
	}
	if c == nil {
		return &StorageError{Op: "save", ID: id, Err: errors.New("nil chat")}
	}

	record := *c
	record.ID = id
	if record.Messages == nil {
		record.Messages = []chat.Message{}
	}

	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return &StorageError{Op: "save", ID: id, Err: errors.Wrap(err, "encode chat")}
	}

	// RELIABILITY: Atomic write with fsync prevents torn transcripts
	if err := util.AtomicWriteFile(s.filePath(id), data, 0644); err != nil {
		return &StorageError{Op: "save", ID: id, Err: err}
	}
	return nil
}

// Exists reports whether a record for id is on disk.
func (s *ChatStore) Exists(id string) bool {
	if chat.ValidateID(id) != nil {
		return false
	}
	_, err := os.Stat(s.filePath(id))
	return err == nil
}

// =============================================================================
// ENUMERATE
// =============================================================================

// Enumerate returns one entry per chat file in the store, ordered by file
// name. Decode failures are reported on the entry; only a failure to read the
// directory itself is returned as an error.
func (s *ChatStore) Enumerate(ctx context.Context) ([]Entry, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, &StorageError{Op: "enumerate", Err: err}
	}

	entries := make([]Entry, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}

	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries[i].ID = id
			if err := chat.ValidateID(id); err != nil {
				entries[i].Err = &StorageError{Op: "enumerate", ID: id, Err: err}
				return nil
			}
			c, err := s.read(id)
			if err != nil {
				entries[i].Err = &StorageError{Op: "enumerate", ID: id, Err: err}
				return nil
			}
			entries[i].Chat = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &StorageError{Op: "enumerate", Err: err}
	}
	return entries, nil
}

// ids lists chat ids found in BaseDir, sorted.
func (s *ChatStore) ids() ([]string, error) {
	dirEntries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || util.IsTempFile(name) {
			continue
		}
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a chat record. Returns ErrChatNotFound when absent.
func (s *ChatStore) Delete(id string) error {
	if err := chat.ValidateID(id); err != nil {
		return &StorageError{Op: "delete", ID: id, Err: err}
	}

	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrChatNotFound
		}
		return &StorageError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (s *ChatStore) read(id string) (*chat.Chat, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		return nil, err
	}

	var c chat.Chat
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode chat")
	}
	// the file name is authoritative
	c.ID = id
	if c.Messages == nil {
		c.Messages = []chat.Message{}
	}
	return &c, nil
}

// filePath returns the file path for a chat id.
func (s *ChatStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, filePrefix+id+fileSuffix)
}
