package cache

import (
	"context"
	"path"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemorySize is the entry limit used when NewMemory gets size <= 0.
const DefaultMemorySize = 10000

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process LRU bounded by size and maxTTL.
// Shorter per entry TTLs passed to Set are honored on read.
type Memory struct {
	lru *lru.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemory returns a Memory cache holding at most size entries for at most maxTTL.
func NewMemory(size int, maxTTL time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}

	return &Memory{
		lru: lru.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now: time.Now,
	}
}

// Get implements rbac.Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}

	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return nil, false, nil
	}

	return e.value, true, nil
}

// Set implements rbac.Cache.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	m.lru.Add(key, e)

	return nil
}

// Delete implements rbac.Cache.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.lru.Remove(k)
	}

	return nil
}

// DeletePattern implements rbac.Cache.
func (m *Memory) DeletePattern(_ context.Context, pattern string) error {
	for _, k := range m.lru.Keys() {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if ok {
			m.lru.Remove(k)
		}
	}

	return nil
}

// Len returns the number of entries, expired ones included until they are purged.
func (m *Memory) Len() int {
	return m.lru.Len()
}
