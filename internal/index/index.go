// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

// Summary is the listing view of a chat.
type Summary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Timestamp    int64  `json:"timestamp"`
	MessageCount int    `json:"messageCount"`
}

// Enumerator is the part of the store the index reads from.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]storage.Entry, error)
}

// Index builds chat listings.
type Index struct {
	store  Enumerator
	logger *zap.Logger
}

// New creates an index over store. A nil logger disables logging.
func New(store Enumerator, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{store: store, logger: logger.Named("index")}
}

// List returns one summary per readable chat, most recent first.
// Unreadable entries are logged and skipped.
func (i *Index) List(ctx context.Context) ([]Summary, error) {
	entries, err := i.store.Enumerate(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil || e.Chat == nil {
			i.logger.Warn("skipping unreadable chat", zap.String("chat_id", e.ID), zap.Error(e.Err))
			continue
		}
		summaries = append(summaries, Summarize(e.Chat))
	}

	Sort(summaries)
	return summaries, nil
}

// Summarize computes the listing metadata of a single chat.
func Summarize(c *chat.Chat) Summary {
	return Summary{
		ID:           c.ID,
		Title:        chat.DeriveTitle(c),
		Timestamp:    chat.ParseIDTimestamp(c.ID),
		MessageCount: len(c.Messages),
	}
}

// Sort orders summaries by timestamp descending, ties broken by id ascending.
func Sort(summaries []Summary) {
	sort.SliceStable(summaries, func(a, b int) bool {
		if summaries[a].Timestamp != summaries[b].Timestamp {
			return summaries[a].Timestamp > summaries[b].Timestamp
		}
		return summaries[a].ID < summaries[b].ID
	})
}
