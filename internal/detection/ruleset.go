// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package detection

import (
	"sync"
	"sync/atomic"
)

// ruleSet is an owner-keyed, registration-ordered list published as an
// immutable snapshot. Readers load the snapshot without locking; writers
// serialize on mu and publish a fresh copy.
type ruleSet[T any] struct {
	mu    sync.Mutex
	snap  atomic.Pointer[[]T]
	owner func(*T) string
}

func newRuleSet[T any](owner func(*T) string) *ruleSet[T] {
	s := &ruleSet[T]{owner: owner}
	empty := make([]T, 0)
	s.snap.Store(&empty)
	return s
}

// load returns the current snapshot. Callers must not modify it.
func (s *ruleSet[T]) load() []T {
	return *s.snap.Load()
}

func (s *ruleSet[T]) indexLocked(cur []T, ownerID string) int {
	for i := range cur {
		if s.owner(&cur[i]) == ownerID {
			return i
		}
	}
	return -1
}

func (s *ruleSet[T]) add(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.load()
	if s.indexLocked(cur, s.owner(&item)) >= 0 {
		return ErrZoneExists
	}
	next := make([]T, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, item)
	s.snap.Store(&next)
	return nil
}

// update replaces the owner's entry in place, keeping its registration slot.
func (s *ruleSet[T]) update(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.load()
	i := s.indexLocked(cur, s.owner(&item))
	if i < 0 {
		return ErrZoneNotFound
	}
	next := make([]T, len(cur))
	copy(next, cur)
	next[i] = item
	s.snap.Store(&next)
	return nil
}

func (s *ruleSet[T]) remove(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.load()
	i := s.indexLocked(cur, ownerID)
	if i < 0 {
		return ErrZoneNotFound
	}
	next := make([]T, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	s.snap.Store(&next)
	return nil
}

// replace swaps the whole set, used when rehydrating from the store.
// Later duplicates of an owner are dropped.
func (s *ruleSet[T]) replace(items []T) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		id := s.owner(&items[i])
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		next = append(next, items[i])
	}
	s.snap.Store(&next)
	return len(next)
}

func (s *ruleSet[T]) get(ownerID string) (T, bool) {
	cur := s.load()
	for i := range cur {
		if s.owner(&cur[i]) == ownerID {
			return cur[i], true
		}
	}
	var zero T
	return zero, false
}
