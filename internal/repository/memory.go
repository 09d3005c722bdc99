package repository

import (
	"context"
	"sync"

	"github.com/i474232898/weatherfo/internal/weather"
)

// MemoryLookups keeps the newest lookups in memory, bounded by capacity.
type MemoryLookups struct {
	mu       sync.RWMutex
	items    []weather.Lookup
	capacity int
}

// NewMemoryLookups creates a MemoryLookups. capacity <= 0 means 100.
func NewMemoryLookups(capacity int) *MemoryLookups {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryLookups{capacity: capacity}
}

// RecordLookup appends l, dropping the oldest entry when full.
func (m *MemoryLookups) RecordLookup(_ context.Context, l weather.Lookup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, l)
	if over := len(m.items) - m.capacity; over > 0 {
		m.items = m.items[over:]
	}
	return nil
}

// Recent returns up to limit lookups, newest first.
func (m *MemoryLookups) Recent(_ context.Context, limit int) ([]weather.Lookup, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.items))
	out := make([]weather.Lookup, 0, n)
	for i := len(m.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}
