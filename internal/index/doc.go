// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index derives listing metadata from stored transcripts.
//
// An Index enumerates the ChatStore on each call; there is no cached state,
// so a deleted chat disappears from the next listing.
//
// # Key Types
//
//   - Index: Builds listings from a store enumeration
//   - Summary: Display metadata for one chat (id, title, timestamp, count)
//
// # Usage
//
//	idx := index.New(store, logger)
//	summaries, err := idx.List(ctx)
//	for _, s := range summaries {
//	    fmt.Printf("%s  %s (%d)\n", s.ID, s.Title, s.MessageCount)
//	}
package index
