// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. It reports field
// names by their json tag and registers the domain tags below:
//
//   - device_category: WIFI, BLUETOOTH or OTHER
//   - anomaly_type: one of the seven anomaly types
//   - severity: LOW, MEDIUM, HIGH or CRITICAL
//
// Handlers turn a failure into the API error envelope:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, verr)
//	    return
//	}
package validation
