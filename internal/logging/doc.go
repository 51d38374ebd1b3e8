// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package logging provides centralized zerolog-based structured logging for Shipwatch.
//
// JSON output is the production default, console output is for development.
// Adapters route slog (used by sutureslog) and Watermill logging into the
// same zerolog stream so that replay, transport, rule evaluation and HTTP
// logs share one format.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("mmsi", r.MMSI).Msg("Position ingested")
//	logging.Error().Err(err).Msg("Retention sweep failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging
