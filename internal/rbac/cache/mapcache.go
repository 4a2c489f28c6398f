package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// Map is an unbounded cache without expiry. Meant for tests.
type Map struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[string][]byte)}
}

// Get implements rbac.Cache.
func (m *Map) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.entries[key]

	return v, ok, nil
}

// Set implements rbac.Cache. ttl is ignored.
func (m *Map) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), value...)

	return nil
}

// Delete implements rbac.Cache.
func (m *Map) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}

	return nil
}

// DeletePattern implements rbac.Cache.
func (m *Map) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.entries {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if ok {
			delete(m.entries, k)
		}
	}

	return nil
}

// Has reports whether key is cached.
func (m *Map) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[key]

	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
