package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	t.Cleanup(m.Close)
	return m
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	// Callers cannot mutate the stored value
	v[0] = 'x'
	v, _, _ = m.Get(ctx, "k")
	assert.Equal(t, []byte("v"), v)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)

	require.NoError(t, m.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))

	_, ok, _ := m.Get(ctx, "short")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok, _ := m.Get(ctx, "short")
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)

	require.NoError(t, m.Set(ctx, ReportKey(1, "daily", "2024-03"), []byte("a"), 0))
	require.NoError(t, m.Set(ctx, ReportKey(1, "weekly", "2024-W09"), []byte("b"), 0))
	require.NoError(t, m.Set(ctx, ReportKey(12, "daily", "2024-03"), []byte("c"), 0))

	require.NoError(t, m.DeletePrefix(ctx, UserPrefix(1)))

	_, ok, _ := m.Get(ctx, ReportKey(1, "daily", "2024-03"))
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, ReportKey(1, "weekly", "2024-W09"))
	assert.False(t, ok)
	// "report:1:" must not match user 12
	_, ok, _ = m.Get(ctx, ReportKey(12, "daily", "2024-03"))
	assert.True(t, ok)
}
