// Package cache stores rendered layout documents keyed by a hash of the
// items and options they were computed from.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fentz26/timeline/internal/audit"
	"github.com/fentz26/timeline/internal/models"
)

// Cache is a byte cache for derived layouts.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Close() error
}

// Key derives a cache key from the exact items and lane mode.
func Key(items []models.Item, strict bool) string {
	return "layout:" + audit.HashInputs(struct {
		Items  []models.Item `json:"items"`
		Strict bool          `json:"strict"`
	}{items, strict})
}

// Open returns a Redis cache when redisURL is set, otherwise an in-process one.
func Open(redisURL string, ttl time.Duration) (Cache, error) {
	if redisURL == "" {
		return NewMemory(ttl, defaultMemoryEntries), nil
	}
	return NewRedis(redisURL, ttl)
}

const defaultMemoryEntries = 64

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process cache with optional TTL and a size bound.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an in-process cache. A zero ttl never expires entries.
func NewMemory(ttl time.Duration, max int) *Memory {
	if max <= 0 {
		max = defaultMemoryEntries
	}
	return &Memory{ttl: ttl, max: max, entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.max {
		m.evict()
	}
	e := entry{data: append([]byte(nil), val...)}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

// evict drops expired entries, or the soonest-expiring one when none are.
func (m *Memory) evict() {
	now := m.now()
	var victim string
	var victimExp time.Time
	for k, e := range m.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.entries, k)
			continue
		}
		if victim == "" || e.expires.Before(victimExp) {
			victim, victimExp = k, e.expires
		}
	}
	if len(m.entries) >= m.max && victim != "" {
		delete(m.entries, victim)
	}
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}
