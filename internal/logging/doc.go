// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package logging provides centralized zerolog-based logging for TrackGuard.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Operation failed")
//
//	// Correlation IDs tie together everything logged during one analysis pass.
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Int("records", n).Msg("Analysis pass complete")
//
// # Privacy
//
// Device addresses identify people's hardware. Log them through
// RedactAddress unless the level is debug.
//
// # Supervisor Integration
//
// NewSlogLogger returns an *slog.Logger backed by zerolog, which is what
// sutureslog expects.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
