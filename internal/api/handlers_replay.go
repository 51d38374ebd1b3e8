// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"net/http"

	"github.com/tomtom215/shipwatch/internal/logging"
)

// GetReplaySpeed returns the current speed factor.
func (h *Handler) GetReplaySpeed(w http.ResponseWriter, r *http.Request) {
	if h.deps.Speed == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Replay is not enabled", nil)
		return
	}
	respondData(w, r, http.StatusOK, SpeedResponse{Factor: h.deps.Speed.Get()})
}

// SetReplaySpeed changes the speed factor. The next record's delay uses the
// new value; factors <= 0 are rejected and leave the old value in place.
func (h *Handler) SetReplaySpeed(w http.ResponseWriter, r *http.Request) {
	if h.deps.Speed == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Replay is not enabled", nil)
		return
	}

	var req SpeedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	previous := h.deps.Speed.Get()
	if err := h.deps.Speed.Set(*req.Factor); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	logging.Ctx(r.Context()).Info().
		Float64("previous", previous).
		Float64("factor", *req.Factor).
		Msg("Replay speed changed")

	respondData(w, r, http.StatusOK, SpeedResponse{Factor: h.deps.Speed.Get()})
}
