// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package cache

import (
	"testing"
	"time"
)

func TestDedupCache_IsDuplicate(t *testing.T) {
	t.Parallel()

	c := NewDedupCache(10, time.Minute)
	if c.IsDuplicate("211-100") {
		t.Error("first sighting is not a duplicate")
	}
	if !c.IsDuplicate("211-100") {
		t.Error("second sighting is a duplicate")
	}
	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("stats = %d/%d/%d, want 1/1/1", hits, misses, size)
	}
}

func TestDedupCache_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	c := NewDedupCache(10, time.Minute)
	c.now = func() time.Time { return now }

	c.IsDuplicate("a")
	now = now.Add(59 * time.Second)
	if !c.Contains("a") {
		t.Error("key should still be live before TTL")
	}
	now = now.Add(time.Second)
	if c.Contains("a") {
		t.Error("key should expire at TTL")
	}
	if c.IsDuplicate("a") {
		t.Error("expired key counts as new")
	}

	c.IsDuplicate("b")
	now = now.Add(2 * time.Minute)
	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired = %d, want 2", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestDedupCache_EvictsLeastRecent(t *testing.T) {
	t.Parallel()

	c := NewDedupCache(3, time.Minute)
	c.IsDuplicate("a")
	c.IsDuplicate("b")
	c.IsDuplicate("c")
	c.IsDuplicate("a") // refresh a
	c.IsDuplicate("d") // evicts b

	if c.Contains("b") {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !c.Contains(k) {
			t.Errorf("%s should be present", k)
		}
	}
}
