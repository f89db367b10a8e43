/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache[string](time.Minute)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache[int](time.Minute)

	c.SetWithTTL("k", 42, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	// Expired entries are dropped on read.
	assert.Zero(t, c.Len())
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := NewCache[int](time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache[int](time.Minute)
	done := make(chan struct{})

	go func() {
		for i := 0; i < 500; i++ {
			c.Set("k", i)
		}
		close(done)
	}()

	for i := 0; i < 500; i++ {
		c.Get("k")
	}
	<-done
}
