// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shipwatch/internal/database"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/validation"
)

const (
	defaultTrackLimit   = 1000
	defaultHistoryLimit = 1000
)

// VesselView is a position enriched with registry data.
type VesselView struct {
	models.VesselUpdate
	NavStatusText string `json:"nav_status_text"`
	Source        string `json:"source,omitempty"`
}

func (h *Handler) shipType(mmsi string) models.ShipType {
	if h.deps.Vessels == nil {
		return models.ShipTypeUnknown
	}
	return h.deps.Vessels.ShipType(mmsi)
}

func (h *Handler) view(r models.PositionReport, source string) VesselView {
	return VesselView{
		VesselUpdate:  models.NewVesselUpdate(r, h.shipType(r.MMSI)),
		NavStatusText: models.NavStatusName(r.NavStatus),
		Source:        source,
	}
}

func (h *Handler) positionsAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Positions == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "Position cache is not available", nil)
		return false
	}
	return true
}

// ListVessels returns the latest cached position of every vessel, sorted by
// MMSI. Optional filters: moving=true|false, type=<ship type>.
func (h *Handler) ListVessels(w http.ResponseWriter, r *http.Request) {
	if !h.positionsAvailable(w, r) {
		return
	}

	var movingFilter *bool
	if raw := r.URL.Query().Get("moving"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "moving must be true or false", nil)
			return
		}
		movingFilter = &v
	}

	var typeFilter models.ShipType
	if raw := r.URL.Query().Get("type"); raw != "" {
		if strings.EqualFold(strings.TrimSpace(raw), string(models.ShipTypeUnknown)) {
			typeFilter = models.ShipTypeUnknown
		} else {
			t, err := models.ParseShipType(raw)
			if err != nil {
				respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
				return
			}
			typeFilter = t
		}
	}

	snapshot := h.deps.Positions.Snapshot()
	out := make([]VesselView, 0, len(snapshot))
	for _, p := range snapshot {
		if movingFilter != nil && p.IsMoving() != *movingFilter {
			continue
		}
		v := h.view(p, "")
		if typeFilter != "" && v.ShipType != typeFilter {
			continue
		}
		out = append(out, v)
	}
	respondList(w, r, out)
}

// VesselStats returns position cache statistics.
func (h *Handler) VesselStats(w http.ResponseWriter, r *http.Request) {
	if !h.positionsAvailable(w, r) {
		return
	}
	respondData(w, r, http.StatusOK, h.deps.Positions.Stats())
}

// NearbyVessels returns vessels within radius_km of lat/lon, nearest first.
func (h *Handler) NearbyVessels(w http.ResponseWriter, r *http.Request) {
	if !h.positionsAvailable(w, r) {
		return
	}

	var req NearbyRequest
	var err error
	if req.Lat, err = parseFloatParam(r, "lat"); err == nil {
		if req.Lon, err = parseFloatParam(r, "lon"); err == nil {
			req.RadiusKm, err = parseFloatParam(r, "radius_km")
		}
	}
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	hits := h.deps.Positions.Nearby(req.Lat, req.Lon, req.RadiusKm)
	out := make([]VesselView, 0, len(hits))
	for _, p := range hits {
		out = append(out, h.view(p, ""))
	}
	respondList(w, r, out)
}

// GetVessel returns the latest position of one vessel, from the cache or,
// after a restart before its first report, from history.
func (h *Handler) GetVessel(w http.ResponseWriter, r *http.Request) {
	mmsi := chi.URLParam(r, "mmsi")
	if !validation.IsMMSI(mmsi) {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "mmsi must be a vessel identifier of 1 to 9 digits", nil)
		return
	}

	if h.deps.Positions != nil {
		if p, ok := h.deps.Positions.Get(mmsi); ok {
			respondData(w, r, http.StatusOK, h.view(p, "cache"))
			return
		}
	}

	if h.deps.History != nil {
		p, err := h.deps.History.LatestPosition(r.Context(), mmsi)
		if err == nil {
			respondData(w, r, http.StatusOK, h.view(p, "history"))
			return
		}
		if !errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load vessel", err)
			return
		}
	}

	respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Vessel not found", nil)
}

// VesselTrack returns stored reports of one vessel in time order.
// Optional: from, to (epoch seconds, inclusive) and limit.
func (h *Handler) VesselTrack(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "History is not available", nil)
		return
	}

	mmsi := chi.URLParam(r, "mmsi")
	req, err := parseHistoryRequest(r, defaultTrackLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	req.MMSIs = []string{mmsi}
	h.queryHistory(w, r, req)
}

// History returns stored reports matching the filters: mmsi (comma
// separated), from, to, min_lat, min_lon, max_lat, max_lon and limit.
// A box with min_lon > max_lon crosses the antimeridian.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, "History is not available", nil)
		return
	}

	req, err := parseHistoryRequest(r, defaultHistoryLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if raw := r.URL.Query().Get("mmsi"); raw != "" {
		req.MMSIs = parseCommaSeparated(raw)
	}
	h.queryHistory(w, r, req)
}

func (h *Handler) queryHistory(w http.ResponseWriter, r *http.Request, req HistoryRequest) {
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	if req.From != nil && req.To != nil && *req.To < *req.From {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "to must not be before from", nil)
		return
	}

	q := database.HistoryQuery{MMSIs: req.MMSIs, From: req.From, To: req.To, Limit: req.Limit}
	box, err := req.box()
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	q.Box = box

	reports, err := h.deps.History.QueryPositions(r.Context(), q)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to query history", err)
		return
	}
	respondList(w, r, reports)
}

func parseHistoryRequest(r *http.Request, defaultLimit int) (HistoryRequest, error) {
	req := HistoryRequest{Limit: getIntParam(r, "limit", defaultLimit)}
	var err error
	if req.From, err = parseOptionalInt64(r, "from"); err != nil {
		return req, err
	}
	if req.To, err = parseOptionalInt64(r, "to"); err != nil {
		return req, err
	}
	for key, dst := range map[string]**float64{
		"min_lat": &req.MinLat,
		"min_lon": &req.MinLon,
		"max_lat": &req.MaxLat,
		"max_lon": &req.MaxLon,
	} {
		if r.URL.Query().Get(key) == "" {
			continue
		}
		v, err := parseFloatParam(r, key)
		if err != nil {
			return req, err
		}
		*dst = &v
	}
	return req, nil
}

// box returns the bounding box, nil when no corner is given, or an error
// when only some corners are.
func (req HistoryRequest) box() (*database.BoundingBox, error) {
	set := 0
	for _, p := range []*float64{req.MinLat, req.MinLon, req.MaxLat, req.MaxLon} {
		if p != nil {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case 4:
		if *req.MinLat > *req.MaxLat {
			return nil, errors.New("min_lat must not exceed max_lat")
		}
		return &database.BoundingBox{
			MinLat: *req.MinLat,
			MinLon: *req.MinLon,
			MaxLat: *req.MaxLat,
			MaxLon: *req.MaxLon,
		}, nil
	default:
		return nil, errors.New("a bounding box needs min_lat, min_lon, max_lat and max_lon")
	}
}

// parseCommaSeparated splits a comma list, dropping empty items.
func parseCommaSeparated(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
