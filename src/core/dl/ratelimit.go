/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tgresolve/config"
)

// requestLimiter spaces outbound metadata requests with a minimum delay
// plus random jitter, keeping the request cadence irregular.
type requestLimiter struct {
	limiter *rate.Limiter
	jitter  time.Duration
}

func newRequestLimiter(minDelay, maxJitter time.Duration) *requestLimiter {
	if minDelay <= 0 {
		minDelay = time.Millisecond
	}
	return &requestLimiter{
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
		jitter:  maxJitter,
	}
}

// Wait blocks until the next request slot, honoring ctx cancellation.
func (r *requestLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	if r.jitter <= 0 {
		return nil
	}

	t := time.NewTimer(rand.N(r.jitter))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var (
	limiterOnce   sync.Once
	sharedLimiter *requestLimiter
)

// acquireRequestSlot gates every outbound metadata/search request across all
// backends through one shared limiter.
func acquireRequestSlot(ctx context.Context) error {
	limiterOnce.Do(func() {
		sharedLimiter = newRequestLimiter(config.Conf.MinRequestDelay, config.Conf.MaxRequestJitter)
	})
	return sharedLimiter.Wait(ctx)
}
