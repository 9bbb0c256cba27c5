package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiterAllowPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "each IP gets its own bucket")
}

func TestRateLimiterCleanupDropsIdleEntries(t *testing.T) {
	// Fast refill so the bucket is back at full burst almost immediately.
	rl := NewRateLimiter(rate.Limit(100), 1)
	require.True(t, rl.allow("10.0.0.1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rl.Cleanup(ctx, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.limiters) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRateLimiterCleanupKeepsActiveEntries(t *testing.T) {
	// Slow refill: a recently-drained bucket stays below full burst.
	rl := NewRateLimiter(rate.Limit(0.01), 2)
	require.True(t, rl.allow("10.0.0.1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rl.Cleanup(ctx, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 1)
}
