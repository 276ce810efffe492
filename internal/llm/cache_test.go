package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/service"
)

func TestMemoryCache(t *testing.T) {
	cache := newMemoryCache(50 * time.Millisecond)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	cache.Set(ctx, "NETFLIX", service.Classification{Category: "Subscriptions", Confidence: 0.8})

	got, ok := cache.Get(ctx, "NETFLIX")
	require.True(t, ok)
	assert.Equal(t, "Subscriptions", got.Category)
	assert.Equal(t, 1, cache.size())

	_, ok = cache.Get(ctx, "HULU")
	assert.False(t, ok)

	time.Sleep(80 * time.Millisecond)
	_, ok = cache.Get(ctx, "NETFLIX")
	assert.False(t, ok, "entry should expire")
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2)
	defer rl.Close()

	assert.True(t, rl.tryAcquire())
	assert.True(t, rl.tryAcquire())
	assert.False(t, rl.tryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := rl.wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
