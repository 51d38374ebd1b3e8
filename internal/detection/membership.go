// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package detection

import (
	"sort"
	"sync"
)

// membership records, per zone, which vessels were inside as of their last
// evaluated report. Absent means outside.
type membership struct {
	mu     sync.RWMutex
	inside map[string]map[string]struct{} // zone key -> mmsi set
}

func newMembership() *membership {
	return &membership{inside: make(map[string]map[string]struct{})}
}

// transition stores the new state and returns the previous one.
func (m *membership) transition(zoneKey, mmsi string, inside bool) (was bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.inside[zoneKey]
	_, was = set[mmsi]

	switch {
	case inside && !was:
		if set == nil {
			set = make(map[string]struct{})
			m.inside[zoneKey] = set
		}
		set[mmsi] = struct{}{}
	case !inside && was:
		delete(set, mmsi)
		if len(set) == 0 {
			delete(m.inside, zoneKey)
		}
	}
	return was
}

// members returns the vessels inside zoneKey, sorted.
func (m *membership) members(zoneKey string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.inside[zoneKey]
	out := make([]string, 0, len(set))
	for mmsi := range set {
		out = append(out, mmsi)
	}
	sort.Strings(out)
	return out
}

func (m *membership) isInside(zoneKey, mmsi string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.inside[zoneKey][mmsi]
	return ok
}

func (m *membership) drop(zoneKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inside, zoneKey)
}

func (m *membership) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, set := range m.inside {
		n += len(set)
	}
	return n
}
