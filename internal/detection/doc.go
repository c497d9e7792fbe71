// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package detection runs anomaly analysis over wireless-device sighting
// history and emits scored, severity-classified anomaly records.
//
// Detection Architecture:
//
//	SightingSource -> Engine.RunAnalysisPass -> detectors -> AnomalySink
//	                    |          |
//	                    v          v
//	          ExclusionChecker   ModelScorer (isolation forest)
//
// A pass walks every device category. For each non-excluded device it loads
// the trailing analysis window and runs the per-device detectors; for each
// category it loads all sightings in range and runs the cross-device
// detectors. Sub-tasks run on a bounded worker pool and share nothing but the
// read-only model.
//
// Per-device detectors:
//   - Temporal clustering: bursts of sightings far tighter than the device's
//     usual cadence
//   - Geographic tracking: repeated reappearance after the observer moved
//     more than the significant-distance threshold
//   - Frequency: sighting rate above the suspicious-frequency threshold
//
// Per-category detectors:
//   - Correlation: device pairs that keep showing up in the same time bucket
//   - New-device cluster: several never-seen devices arriving together
//
// Records always carry score and confidence within [0,1]. Severity is a
// fixed partition of the score: 0.8 critical, 0.6 high, 0.4 medium, else low.
//
// Collaborator failures (source, exclusion, sink) abort the pass and are
// reported wrapped in ErrCollaborator. Records inserted before the failure
// stay in place; re-running is safe because detectors are pure functions of
// window content.
package detection
