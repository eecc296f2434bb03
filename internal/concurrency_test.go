// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal contains race detection tests for gemini-agent.
//
// Run with: go test -race -v ./internal/...
//
// These tests drive the conversation service, chat store and listing from many
// goroutines at once, the way concurrent HTTP requests do.
package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
	"github.com/ATreeShine/GEMINI-AGENT/internal/index"
	"github.com/ATreeShine/GEMINI-AGENT/internal/responder"
	"github.com/ATreeShine/GEMINI-AGENT/internal/server"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

// =============================================================================
// TEST CONFIGURATION
// =============================================================================

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 20
	// Number of iterations per goroutine
	raceIterations = 5
	// Timeout for race tests
	raceTimeout = 30 * time.Second
)

func newRaceService(t *testing.T) (*conversation.Service, *storage.ChatStore, *atomic.Int32) {
	t.Helper()

	store, err := storage.NewChatStore(t.TempDir())
	require.NoError(t, err)

	var inFlight atomic.Int32
	echo := responder.Func(func(ctx context.Context, h []chat.Message, _ chat.Settings) (string, error) {
		inFlight.Add(1)
		defer inFlight.Add(-1)
		time.Sleep(time.Millisecond)
		return "re: " + h[len(h)-1].Content, nil
	})

	svc := conversation.NewService(store, echo, conversation.Options{ResponderTimeout: raceTimeout})
	return svc, store, &inFlight
}

// =============================================================================
// TURN CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_SameChatTurns sends many turns to one chat at once. Every
// turn must land as an adjacent user/assistant pair and none may be lost.
func TestConcurrency_SameChatTurns(t *testing.T) {
	svc, _, _ := newRaceService(t)

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	first, err := svc.Send(ctx, conversation.SendRequest{Message: "seed"})
	require.NoError(t, err)
	id := first.ChatID

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < raceConcurrency; i++ {
		i := i
		g.Go(func() error {
			_, err := svc.Send(gctx, conversation.SendRequest{ChatID: id, Message: fmt.Sprintf("msg-%d", i)})
			return err
		})
	}
	require.NoError(t, g.Wait())

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Messages, 2*(raceConcurrency+1))

	seen := make(map[string]bool)
	for j := 0; j < len(c.Messages); j += 2 {
		user, reply := c.Messages[j], c.Messages[j+1]
		assert.Equal(t, chat.RoleUser, user.Role)
		assert.Equal(t, chat.RoleAssistant, reply.Role)
		assert.Equal(t, "re: "+user.Content, reply.Content, "turn %d interleaved", j/2)
		assert.False(t, seen[user.Content], "duplicate turn %q", user.Content)
		seen[user.Content] = true
	}
}

// TestConcurrency_DistinctChatsRunInParallel checks that turns on different
// chats do not serialize behind one another.
func TestConcurrency_DistinctChatsRunInParallel(t *testing.T) {
	store, err := storage.NewChatStore(t.TempDir())
	require.NoError(t, err)

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)
	blocking := responder.Func(func(ctx context.Context, _ []chat.Message, _ chat.Settings) (string, error) {
		started.Done()
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	svc := conversation.NewService(store, blocking, conversation.Options{ResponderTimeout: raceTimeout})

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var g errgroup.Group
	for _, id := range []string{"1000", "2000"} {
		id := id
		g.Go(func() error {
			_, err := svc.Send(ctx, conversation.SendRequest{ChatID: id, Message: "hi"})
			return err
		})
	}

	// both responders are running before either is released
	waitCh := make(chan struct{})
	go func() { started.Wait(); close(waitCh) }()
	select {
	case <-waitCh:
	case <-ctx.Done():
		t.Fatal("turns on distinct chats were serialized")
	}
	close(release)
	require.NoError(t, g.Wait())
}

// TestConcurrency_ListDuringWrites lists chats while new chats are being
// created. Listings must never fail or contain partial records.
func TestConcurrency_ListDuringWrites(t *testing.T) {
	svc, store, _ := newRaceService(t)
	idx := index.New(store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var writers sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		writers.Add(1)
		go func(i int) {
			defer writers.Done()
			for j := 0; j < raceIterations; j++ {
				_, err := svc.Send(ctx, conversation.SendRequest{Message: fmt.Sprintf("w%d-%d", i, j)})
				assert.NoError(t, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() { writers.Wait(); close(done) }()

	var listings int
	for {
		summaries, err := idx.List(ctx)
		require.NoError(t, err)
		for _, s := range summaries {
			assert.Equal(t, 2, s.MessageCount, "partial record for %s", s.ID)
			assert.True(t, strings.HasSuffix(s.Title, "..."))
		}
		listings++

		select {
		case <-done:
			summaries, err := idx.List(ctx)
			require.NoError(t, err)
			assert.Len(t, summaries, raceConcurrency*raceIterations)
			assert.Positive(t, listings)
			return
		default:
		}
	}
}

// TestConcurrency_UniqueIDs mints ids from many goroutines.
func TestConcurrency_UniqueIDs(t *testing.T) {
	gen := chat.NewIDGenerator()

	var mu sync.Mutex
	ids := make(map[string]struct{}, raceConcurrency*raceIterations)

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				id := gen.Next()
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, raceConcurrency*raceIterations)
}

// =============================================================================
// MIDDLEWARE CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_RateLimiter hammers the limiter from many clients.
func TestConcurrency_RateLimiter(t *testing.T) {
	limiter := server.NewRateLimiter(1, 5)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("10.0.0.%d", i%4)
			for j := 0; j < raceIterations*4; j++ {
				if limiter.Allow(key) {
					allowed.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, limiter.Len())
	// four clients, burst of five each, plus at most a token or two of refill
	assert.GreaterOrEqual(t, allowed.Load(), int32(20))
	assert.LessOrEqual(t, allowed.Load(), int32(28))
}
