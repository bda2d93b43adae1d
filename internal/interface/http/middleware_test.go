package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/yt-summarizer/internal/infra/config"
)

func TestIPRateLimiterSweepsIdleVisitorsPeriodically(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 5})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("10.0.0.1"))

	now = start.Add(30 * time.Second)
	require.True(t, limiter.allow("10.0.0.2"))
	require.Len(t, limiter.visitors, 2)
	require.Equal(t, start, limiter.lastSweep)

	now = start.Add(5*time.Minute + 31*time.Second)
	require.True(t, limiter.allow("10.0.0.3"))
	require.Len(t, limiter.visitors, 1)
	require.Contains(t, limiter.visitors, "10.0.0.3")
	require.Equal(t, now, limiter.lastSweep)

	now = now.Add(10 * time.Second)
	require.True(t, limiter.allow("10.0.0.4"))
	require.Len(t, limiter.visitors, 2)
}

func TestIPRateLimiterEnforcesBurst(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.2"))
}
