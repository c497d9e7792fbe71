// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

// Error codes returned in models.APIError.Code.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeInvalidJSON   = "INVALID_JSON"
	codeNotFound      = "NOT_FOUND"
	codeDatabase      = "DATABASE_ERROR"
	codeRateLimited   = "RATE_LIMIT_EXCEEDED"
	codeAnalysis      = "ANALYSIS_ERROR"
	codeUnavailable   = "SERVICE_UNAVAILABLE"
	codeMLDisabled    = "ML_DISABLED"
	codeTraining      = "TRAINING_ERROR"
	codeExclusion     = "EXCLUSION_ERROR"
	codeUnknownDetect = "UNKNOWN_DETECTOR"
)
