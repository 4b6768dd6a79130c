package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestMemoryCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(10, clock.now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", uint(42), time.Minute))

	var got uint
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint(42), got)

	clock.t = clock.t.Add(time.Minute)
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheEvictsSoonestExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(2, clock.now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", 1, time.Second))
	require.NoError(t, c.Set(ctx, "long", 2, time.Hour))
	require.NoError(t, c.Set(ctx, "new", 3, time.Hour))

	var v int
	found, _ := c.Get(ctx, "short", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "long", &v)
	assert.True(t, found)
	found, _ = c.Get(ctx, "new", &v)
	assert.True(t, found)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(0, nil)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", "x", time.Hour))
	require.NoError(t, c.Set(ctx, "b", "y", time.Hour))
	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	assert.Equal(t, 0, c.Len())
}
