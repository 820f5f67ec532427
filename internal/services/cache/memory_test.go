package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSet(t *testing.T) {
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	_, ok := mc.Get(ctx, "article:https://example.com/a")
	assert.False(t, ok)

	require.NoError(t, mc.Set(ctx, "article:https://example.com/a", "extracted body", time.Minute))

	text, ok := mc.Get(ctx, "article:https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "extracted body", text)

	// Keys carry the extraction mode, so the same URL under another mode misses
	_, ok = mc.Get(ctx, "markdown:https://example.com/a")
	assert.False(t, ok)
}

func TestMemoryCacheOverwriteReplacesText(t *testing.T) {
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "first extraction", time.Minute))
	require.NoError(t, mc.Set(ctx, "k", "second extraction", time.Minute))

	text, ok := mc.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "second extraction", text)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(1)
	defer mc.Stop()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "short-lived", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := mc.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheEvictsWhenFull(t *testing.T) {
	mc := NewMemoryCache(1) // 1 MB cap
	defer mc.Stop()
	ctx := context.Background()

	big := strings.Repeat("a", 600*1024)
	require.NoError(t, mc.Set(ctx, "first", big, time.Minute))
	require.NoError(t, mc.Set(ctx, "second", big, time.Minute))

	// The cap holds one entry of this size, so the older one is gone
	_, ok := mc.Get(ctx, "first")
	assert.False(t, ok)
	text, ok := mc.Get(ctx, "second")
	require.True(t, ok)
	assert.Equal(t, big, text)
}
