package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

func TestLimiterAllow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	limiter := New(store, 3, 10*time.Minute)
	ctx := context.Background()

	// Первые три события проходят
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, "otp:0912000000"))
	}

	// Четвёртое упирается в лимит
	err := limiter.Allow(ctx, "otp:0912000000")
	require.Error(t, err)
	var rateLimitErr *apperr.RateLimitError
	assert.ErrorAs(t, err, &rateLimitErr)

	// Другой ключ считается отдельно
	require.NoError(t, limiter.Allow(ctx, "otp:0913000000"))
}

func TestLimiterWindowReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	limiter := New(store, 2, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "k"))
	require.NoError(t, limiter.Allow(ctx, "k"))
	require.Error(t, limiter.Allow(ctx, "k"))

	// После истечения окна счётчик начинается заново
	now = now.Add(11 * time.Minute)
	require.NoError(t, limiter.Allow(ctx, "k"))
	require.NoError(t, limiter.Allow(ctx, "k"))
	require.Error(t, limiter.Allow(ctx, "k"))
}
