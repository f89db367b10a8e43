/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a small in-memory TTL cache safe for concurrent use.
type Cache[T any] struct {
	mu         sync.RWMutex
	items      map[string]entry[T]
	defaultTTL time.Duration
}

// NewCache creates a Cache with the given default TTL.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		items:      make(map[string]entry[T]),
		defaultTTL: ttl,
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		if ok {
			c.Delete(key)
		}
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes a single key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry[T])
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
