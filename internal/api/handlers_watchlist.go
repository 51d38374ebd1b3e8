// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shipwatch/internal/database"
	"github.com/tomtom215/shipwatch/internal/logging"
)

func (h *Handler) watchlistAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Watches == nil || h.deps.Watchers == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Watch lists are not available", nil)
		return false
	}
	return true
}

// GetWatchlist returns the vessels the caller watches.
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.watchlistAvailable(w, r) {
		return
	}
	mmsis := h.deps.Watchers.List(sub)
	if mmsis == nil {
		mmsis = []string{}
	}
	respondData(w, r, http.StatusOK, WatchResponse{SubscriberID: sub, MMSIs: mmsis})
}

// PutWatch adds a vessel to the caller's watch list. Idempotent: 201 when
// newly added, 200 when already present.
func (h *Handler) PutWatch(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.watchlistAvailable(w, r) {
		return
	}

	req := WatchRequest{MMSI: chi.URLParam(r, "mmsi")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	if err := h.deps.Watches.AddWatch(r.Context(), sub, req.MMSI); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to save watch", err)
		return
	}
	added := h.deps.Watchers.Add(sub, req.MMSI)

	logging.Ctx(r.Context()).Debug().Str("mmsi", req.MMSI).Bool("added", added).Msg("Vessel watched")

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondData(w, r, status, WatchResponse{SubscriberID: sub, MMSIs: h.deps.Watchers.List(sub)})
}

// DeleteWatch removes a vessel from the caller's watch list.
func (h *Handler) DeleteWatch(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubscriber(w, r)
	if !ok || !h.watchlistAvailable(w, r) {
		return
	}

	req := WatchRequest{MMSI: chi.URLParam(r, "mmsi")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	err := h.deps.Watches.RemoveWatch(r.Context(), sub, req.MMSI)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to remove watch", err)
		return
	}
	removed := h.deps.Watchers.Remove(sub, req.MMSI)
	if err != nil && !removed {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Vessel is not on the watch list", nil)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("mmsi", req.MMSI).Msg("Vessel unwatched")
	w.WriteHeader(http.StatusNoContent)
}
