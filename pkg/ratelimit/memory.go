package ratelimit

import (
	"context"
	"sync"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Memory is an in-process sliding window store. Each key holds the times
// of its admitted requests within the window.
type Memory struct {
	sync.Mutex
	now     func() time.Time
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	window time.Duration
	ts     []time.Time
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMemory returns an empty store. If now is nil, time.Now is used.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:     now,
		entries: make(map[string]*memoryEntry),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Admit records a request for key and returns true if fewer than limit
// requests were admitted within the window. Denied requests are not
// recorded.
func (m *Memory) Admit(_ context.Context, key string, limit int, window time.Duration) bool {
	m.Lock()
	defer m.Unlock()

	now := m.now()
	entry, exists := m.entries[key]
	if !exists {
		entry = &memoryEntry{}
		m.entries[key] = entry
	}
	entry.window = window
	entry.prune(now)

	if len(entry.ts) >= limit {
		return false
	}
	entry.ts = append(entry.ts, now)
	return true
}

// Prune removes request times older than their window, and keys with no
// remaining requests. It returns the number of keys removed.
func (m *Memory) Prune() int {
	m.Lock()
	defer m.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if entry.prune(now); len(entry.ts) == 0 {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of keys held
func (m *Memory) Len() int {
	m.Lock()
	defer m.Unlock()
	return len(m.entries)
}

// Run prunes the store every interval until the context is cancelled
func (m *Memory) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Prune()
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (e *memoryEntry) prune(now time.Time) {
	i := 0
	for i < len(e.ts) && now.Sub(e.ts[i]) >= e.window {
		i++
	}
	if i > 0 {
		e.ts = append(e.ts[:0], e.ts[i:]...)
	}
}
