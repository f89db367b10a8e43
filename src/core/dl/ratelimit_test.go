/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLimiterSpacesRequests(t *testing.T) {
	l := newRequestLimiter(50*time.Millisecond, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}

	// First slot is free, the next two are 50ms apart.
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRequestLimiterAddsJitter(t *testing.T) {
	l := newRequestLimiter(time.Millisecond, 20*time.Millisecond)

	require.NoError(t, l.Wait(context.Background()))
	// Jitter stays bounded by the configured maximum.
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRequestLimiterHonorsContext(t *testing.T) {
	l := newRequestLimiter(time.Hour, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx))
	err := l.Wait(ctx)
	assert.Error(t, err)
}
