// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/shipwatch/internal/auth"
	"github.com/tomtom215/shipwatch/internal/database"
	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
)

// requireSubscriber returns the caller identity or writes 401.
func requireSubscriber(w http.ResponseWriter, r *http.Request) (string, bool) {
	sub := auth.SubscriberID(r.Context())
	if sub == "" {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Subscriber identity required", nil)
		return "", false
	}
	return sub, true
}

func (h *Handler) zonesAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Zones == nil || h.deps.Rules == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Zone management is not available", nil)
		return false
	}
	return true
}

// GetMyZone returns the caller's zone of interest.
func (h *Handler) GetMyZone(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.zonesAvailable(w, r) {
		return
	}

	z, err := h.deps.Zones.GetZone(r.Context(), sub)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No zone of interest", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load zone", err)
		return
	}
	respondData(w, r, http.StatusOK, z)
}

// PutMyZone creates or replaces the caller's zone of interest, then brings
// the rule cache in line before responding.
func (h *Handler) PutMyZone(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.zonesAvailable(w, r) {
		return
	}

	var req ZoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	for i, c := range req.Constraints {
		if err := detection.ValidateConstraint(c); err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("constraints[%d]: %v", i, err), nil)
			return
		}
	}

	saved, created, err := h.deps.Zones.SaveZone(r.Context(), models.ZoneOfInterest{
		OwnerID:      sub,
		Name:         req.Name,
		CenterLat:    req.CenterLat,
		CenterLon:    req.CenterLon,
		RadiusMeters: req.RadiusMeters,
		Constraints:  req.Constraints,
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to save zone", err)
		return
	}

	if err := syncZone(h.deps.Rules, saved, created); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Zone saved but rule cache update failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("zone", saved.Name).
		Bool("created", created).
		Int("constraints", len(saved.Constraints)).
		Msg("Zone of interest saved")

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondData(w, r, status, saved)
}

// DeleteMyZone removes the caller's zone of interest from store and cache.
func (h *Handler) DeleteMyZone(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.zonesAvailable(w, r) {
		return
	}

	err := h.deps.Zones.DeleteZone(r.Context(), sub)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No zone of interest", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to delete zone", err)
		return
	}

	if err := h.deps.Rules.RemoveZone(sub); err != nil && !errors.Is(err, detection.ErrZoneNotFound) {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Zone deleted but rule cache update failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Zone of interest deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetMyCollisionZone returns the caller's collision zone.
func (h *Handler) GetMyCollisionZone(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.zonesAvailable(w, r) {
		return
	}

	z, err := h.deps.Zones.GetCollisionZone(r.Context(), sub)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No collision zone", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load collision zone", err)
		return
	}
	respondData(w, r, http.StatusOK, z)
}

// PutMyCollisionZone creates or replaces the caller's collision zone.
func (h *Handler) PutMyCollisionZone(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.zonesAvailable(w, r) {
		return
	}

	var req CollisionZoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	saved, created, err := h.deps.Zones.SaveCollisionZone(r.Context(), models.CollisionZone{
		OwnerID:      sub,
		Name:         req.Name,
		CenterLat:    req.CenterLat,
		CenterLon:    req.CenterLon,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to save collision zone", err)
		return
	}

	if err := syncCollisionZone(h.deps.Rules, saved, created); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Collision zone saved but rule cache update failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("zone", saved.Name).
		Bool("created", created).
		Msg("Collision zone saved")

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondData(w, r, status, saved)
}

// DeleteMyCollisionZone removes the caller's collision zone.
func (h *Handler) DeleteMyCollisionZone(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.zonesAvailable(w, r) {
		return
	}

	err := h.deps.Zones.DeleteCollisionZone(r.Context(), sub)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No collision zone", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to delete collision zone", err)
		return
	}

	if err := h.deps.Rules.RemoveCollisionZone(sub); err != nil && !errors.Is(err, detection.ErrZoneNotFound) {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Collision zone deleted but rule cache update failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Collision zone deleted")
	w.WriteHeader(http.StatusNoContent)
}

// syncZone mirrors a store write into the rule cache. The store decides
// create versus replace; the cache follows, tolerating drift in either
// direction.
func syncZone(rules detection.RuleCache, z models.ZoneOfInterest, created bool) error {
	if created {
		err := rules.AddZone(z)
		if errors.Is(err, detection.ErrZoneExists) {
			return rules.UpdateZone(z)
		}
		return err
	}
	err := rules.UpdateZone(z)
	if errors.Is(err, detection.ErrZoneNotFound) {
		return rules.AddZone(z)
	}
	return err
}

func syncCollisionZone(rules detection.RuleCache, z models.CollisionZone, created bool) error {
	if created {
		err := rules.AddCollisionZone(z)
		if errors.Is(err, detection.ErrZoneExists) {
			return rules.UpdateCollisionZone(z)
		}
		return err
	}
	err := rules.UpdateCollisionZone(z)
	if errors.Is(err, detection.ErrZoneNotFound) {
		return rules.AddCollisionZone(z)
	}
	return err
}
