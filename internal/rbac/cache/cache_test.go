package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// compile time checks
var (
	_ rbac.Cache = (*Memory)(nil)
	_ rbac.Cache = (*Redis)(nil)
	_ rbac.Cache = (*Map)(nil)
)

func backends(t *testing.T) map[string]rbac.Cache {
	t.Helper()

	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return map[string]rbac.Cache{
		"memory": NewMemory(100, time.Hour),
		"redis":  r,
		"map":    NewMap(),
	}
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.Get(ctx, "rbac:subject:1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "rbac:subject:1", []byte(`{"role":"Admin"}`), time.Minute))

			v, ok, err := c.Get(ctx, "rbac:subject:1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"role":"Admin"}`, string(v))

			// overwrite wins
			require.NoError(t, c.Set(ctx, "rbac:subject:1", []byte(`{"role":"User"}`), time.Minute))
			v, _, _ = c.Get(ctx, "rbac:subject:1")
			assert.JSONEq(t, `{"role":"User"}`, string(v))

			require.NoError(t, c.Delete(ctx, "rbac:subject:1", "rbac:subject:missing"))
			_, ok, err = c.Get(ctx, "rbac:subject:1")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Delete(ctx))
		})
	}
}

func TestBackendsDeletePattern(t *testing.T) {
	ctx := context.Background()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// more than one scan batch
			for i := range 250 {
				require.NoError(t, c.Set(ctx, fmt.Sprintf("rbac:subject:%d", i), []byte("{}"), time.Minute))
			}

			require.NoError(t, c.Set(ctx, "other:key", []byte("x"), time.Minute))

			require.NoError(t, c.DeletePattern(ctx, rbac.SubjectPattern))

			for _, i := range []int{0, 99, 100, 249} {
				_, ok, err := c.Get(ctx, fmt.Sprintf("rbac:subject:%d", i))
				require.NoError(t, err)
				assert.False(t, ok, i)
			}

			_, ok, err := c.Get(ctx, "other:key")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	m := NewMemory(10, time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)

	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemorySizeBound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Hour)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Set(ctx, k, []byte(k), 0))
	}

	assert.Equal(t, 2, m.Len())

	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok, "least recently used entry is evicted")
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, time.Hour)

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'z'

	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	r, err := NewRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDeleteSendsOneCommandPerKey(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	r, err := NewRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	keys := []string{"rbac:subject:1", "rbac:subject:2", "rbac:subject:3"}
	for _, k := range keys[:2] {
		require.NoError(t, r.Set(ctx, k, []byte("x"), time.Minute))
	}

	before := mr.CommandCount()
	require.NoError(t, r.Delete(ctx, keys...))
	assert.Equal(t, len(keys), mr.CommandCount()-before)

	for _, k := range keys {
		assert.False(t, mr.Exists(k), k)
	}
}

func TestRedisErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedis(ctx, "not a url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	r, err := NewRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)

	mr.Close()

	_, _, err = r.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Error(t, r.Delete(ctx, "k"))
	assert.Error(t, r.DeletePattern(ctx, "*"))
}
