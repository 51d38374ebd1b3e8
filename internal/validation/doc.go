// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package validation wraps go-playground/validator v10 with a process-wide
// validator instance and the domain tags used by request and transport
// structs:
//
//	mmsi             1 to 9 ASCII digits
//	constraint_kind  one of models.ConstraintKinds
//	ship_type        any string models.ParseShipType accepts
//
// Failures are returned as *RequestValidationError, which converts to the
// API error shape with ToAPIError:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
