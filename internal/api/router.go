// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shipwatch/internal/auth"
	"github.com/tomtom215/shipwatch/internal/middleware"
	"github.com/tomtom215/shipwatch/internal/models"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, auth: authMiddleware, chiMiddleware: chiMw}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.handler.perfMon.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusMethodNotAllowed, &models.APIResponse{
			Status: "error",
			Error:  &models.APIError{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"},
		})
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.With(APISecurityHeaders).Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket: token may arrive as ?token= since browsers cannot set
	// headers on the upgrade request.
	r.With(router.auth.Authenticate).Get("/ws", router.handler.WebSocket)

	// ========================
	// Admin API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders)
		r.Use(router.auth.Authenticate)

		r.Route("/replay", func(r chi.Router) {
			r.Get("/speed", router.handler.GetReplaySpeed)
			r.Put("/speed", router.handler.SetReplaySpeed)
		})

		r.Route("/zones/me", func(r chi.Router) {
			r.Get("/", router.handler.GetMyZone)
			r.Put("/", router.handler.PutMyZone)
			r.Delete("/", router.handler.DeleteMyZone)
		})

		r.Route("/collision-zones/me", func(r chi.Router) {
			r.Get("/", router.handler.GetMyCollisionZone)
			r.Put("/", router.handler.PutMyCollisionZone)
			r.Delete("/", router.handler.DeleteMyCollisionZone)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", router.handler.GetWatchlist)
			r.Put("/{mmsi}", router.handler.PutWatch)
			r.Delete("/{mmsi}", router.handler.DeleteWatch)
		})

		r.Route("/vessels", func(r chi.Router) {
			r.With(chimiddleware.Compress(5)).Get("/", router.handler.ListVessels)
			r.Get("/stats", router.handler.VesselStats)
			r.Get("/nearby", router.handler.NearbyVessels)
			r.Get("/{mmsi}", router.handler.GetVessel)
			r.With(chimiddleware.Compress(5)).Get("/{mmsi}/track", router.handler.VesselTrack)
		})

		r.With(chimiddleware.Compress(5)).Get("/history", router.handler.History)
		r.Get("/ingest/stats", router.handler.IngestStats)
		r.Get("/perf", router.handler.PerfStats)
	})

	return r
}
