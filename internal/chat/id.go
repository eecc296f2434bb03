// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MaxIDLength is the longest id accepted from clients.
const MaxIDLength = 64

// ids become file names, so only a conservative alphabet is allowed
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ErrInvalidID is returned by ValidateID for ids unsafe to use as file names.
var ErrInvalidID = errors.New("invalid chat id")

// ValidateID checks a client-supplied chat id.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return errors.Wrapf(ErrInvalidID, "%q must match [A-Za-z0-9_-]{1,%d}", id, MaxIDLength)
	}
	return nil
}

// ParseIDTimestamp returns the epoch milliseconds encoded in a generated id.
// Ids that are not decimal integers yield 0.
func ParseIDTimestamp(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// =============================================================================
// ID GENERATOR
// =============================================================================

// IDGenerator mints decimal epoch-millisecond ids. Successive ids from the
// same generator are strictly increasing, even within one millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator backed by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock returns a generator that reads time from now.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// Next returns a new id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// Observe raises the generator floor so future ids sort after id.
// The conversation service calls this for every chat it resumes.
func (g *IDGenerator) Observe(id string) {
	ts := ParseIDTimestamp(id)
	g.mu.Lock()
	if ts > g.last {
		g.last = ts
	}
	g.mu.Unlock()
}
