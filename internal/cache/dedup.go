// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package cache

import (
	"container/list"
	"sync"
	"time"
)

type dedupEntry struct {
	key       string
	expiresAt time.Time
}

// DedupCache is a thread-safe LRU set with per-entry TTL.
// Capacity bounds memory; TTL bounds how long a key counts as seen.
type DedupCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently seen
	items    map[string]*list.Element
	now      func() time.Time

	hits   int64
	misses int64
}

// NewDedupCache creates a cache holding at most capacity keys for ttl each.
func NewDedupCache(capacity int, ttl time.Duration) *DedupCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DedupCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

// IsDuplicate reports whether key was seen within the TTL. A key that was
// not seen (or has expired) is recorded and false is returned.
func (c *DedupCache) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*dedupEntry) //nolint:forcetypeassert // only *dedupEntry is stored
		if now.Before(entry.expiresAt) {
			c.order.MoveToFront(el)
			c.hits++
			return true
		}
		c.order.Remove(el)
		delete(c.items, key)
	}

	c.items[key] = c.order.PushFront(&dedupEntry{key: key, expiresAt: now.Add(c.ttl)})
	for len(c.items) > c.capacity {
		c.evictOldest()
	}
	c.misses++
	return false
}

// Contains reports whether key is present and unexpired without recording it.
func (c *DedupCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	return c.now().Before(el.Value.(*dedupEntry).expiresAt) //nolint:forcetypeassert // only *dedupEntry is stored
}

// CleanupExpired drops expired keys and returns how many were removed.
func (c *DedupCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		entry := el.Value.(*dedupEntry) //nolint:forcetypeassert // only *dedupEntry is stored
		if !now.Before(entry.expiresAt) {
			c.order.Remove(el)
			delete(c.items, entry.key)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of tracked keys.
func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns duplicate hits, first-seen misses and current size.
func (c *DedupCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

func (c *DedupCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*dedupEntry).key) //nolint:forcetypeassert // only *dedupEntry is stored
}
