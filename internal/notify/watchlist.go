// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package notify

import (
	"sort"
	"sync"

	"github.com/tomtom215/shipwatch/internal/models"
)

// WatchList maps subscribers to the vessels they follow, with a reverse
// index for recipient resolution on the ingestion path.
type WatchList struct {
	mu       sync.RWMutex
	bySub    map[string]map[string]struct{}
	byVessel map[string]map[string]struct{}
}

// NewWatchList creates an empty WatchList.
func NewWatchList() *WatchList {
	return &WatchList{
		bySub:    make(map[string]map[string]struct{}),
		byVessel: make(map[string]map[string]struct{}),
	}
}

func addPair(idx map[string]map[string]struct{}, k, v string) bool {
	set, ok := idx[k]
	if !ok {
		set = make(map[string]struct{})
		idx[k] = set
	}
	if _, exists := set[v]; exists {
		return false
	}
	set[v] = struct{}{}
	return true
}

func removePair(idx map[string]map[string]struct{}, k, v string) bool {
	set, ok := idx[k]
	if !ok {
		return false
	}
	if _, exists := set[v]; !exists {
		return false
	}
	delete(set, v)
	if len(set) == 0 {
		delete(idx, k)
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Add records that subscriberID watches mmsi. It reports false if the pair
// already existed.
func (w *WatchList) Add(subscriberID, mmsi string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !addPair(w.bySub, subscriberID, mmsi) {
		return false
	}
	addPair(w.byVessel, mmsi, subscriberID)
	return true
}

// Remove deletes the pair. It reports false if it did not exist.
func (w *WatchList) Remove(subscriberID, mmsi string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !removePair(w.bySub, subscriberID, mmsi) {
		return false
	}
	removePair(w.byVessel, mmsi, subscriberID)
	return true
}

// List returns the vessels subscriberID watches, sorted.
func (w *WatchList) List(subscriberID string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.bySub[subscriberID])
}

// Watchers returns the subscribers watching mmsi, sorted.
func (w *WatchList) Watchers(mmsi string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.byVessel[mmsi])
}

// Load replaces the contents with entries and returns the number of
// distinct pairs.
func (w *WatchList) Load(entries []models.WatchEntry) int {
	bySub := make(map[string]map[string]struct{})
	byVessel := make(map[string]map[string]struct{})
	n := 0
	for _, e := range entries {
		if addPair(bySub, e.SubscriberID, e.MMSI) {
			addPair(byVessel, e.MMSI, e.SubscriberID)
			n++
		}
	}

	w.mu.Lock()
	w.bySub, w.byVessel = bySub, byVessel
	w.mu.Unlock()
	return n
}

// Len returns the number of (subscriber, vessel) pairs.
func (w *WatchList) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, set := range w.bySub {
		n += len(set)
	}
	return n
}
