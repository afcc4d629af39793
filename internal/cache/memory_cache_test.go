package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", []string{"a", "b"}, 0))

	var got []string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMemoryCacheMissOnUnknownKey(t *testing.T) {
	c := NewMemoryCache()

	var got string
	hit, err := c.GetJSON(context.Background(), "nope", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheExpiredEntryIsMissAndDeleted(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.SetJSON(ctx, "k", "v", time.Minute))

	clock = clock.Add(time.Minute + time.Second)

	var got string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	c.mu.Lock()
	_, still := c.m["k"]
	c.mu.Unlock()
	assert.False(t, still, "expired entry should be dropped on read")
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.SetJSON(ctx, "k", "v", 0))

	clock = clock.Add(240 * time.Hour)

	var got string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", got)
}

func TestMemoryCacheCorruptEntryIsMissAndDeleted(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.mu.Lock()
	c.m["k"] = memEntry{data: []byte("{not json")}
	c.mu.Unlock()

	var got map[string]string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	c.mu.Lock()
	_, still := c.m["k"]
	c.mu.Unlock()
	assert.False(t, still, "corrupt entry should be dropped on read")
}

func TestMemoryCacheDel(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "a", 1, 0))
	require.NoError(t, c.SetJSON(ctx, "b", 2, 0))
	require.NoError(t, c.Del(ctx, "a", "b"))

	var got int
	hit, err := c.GetJSON(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
