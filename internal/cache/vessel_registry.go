// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package cache

import (
	"sync"

	"github.com/tomtom215/shipwatch/internal/models"
)

// VesselRegistry is the in-memory static vessel type lookup.
type VesselRegistry struct {
	mu    sync.RWMutex
	types map[string]models.ShipType
}

// NewVesselRegistry creates an empty registry.
func NewVesselRegistry() *VesselRegistry {
	return &VesselRegistry{types: make(map[string]models.ShipType)}
}

// Set records the type of one vessel.
func (r *VesselRegistry) Set(mmsi string, t models.ShipType) {
	r.mu.Lock()
	r.types[mmsi] = t
	r.mu.Unlock()
}

// Load adds vessels in bulk and returns the registry size.
func (r *VesselRegistry) Load(vessels []models.VesselStaticInfo) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vessels {
		r.types[v.MMSI] = v.ShipType
	}
	return len(r.types)
}

// ShipType returns the registered type, or ShipTypeUnknown.
func (r *VesselRegistry) ShipType(mmsi string) models.ShipType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[mmsi]; ok {
		return t
	}
	return models.ShipTypeUnknown
}

// Len returns the number of registered vessels.
func (r *VesselRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
