// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package services provides suture.Service wrappers for TrackGuard components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so supervisor events name it.

  - AnalysisService: ticker that retrains the model and runs an analysis pass
  - CheckpointService: periodic DuckDB WAL checkpoint
  - HTTPServerService: *http.Server with graceful shutdown

Dependencies are expressed as small interfaces so the wrappers can be tested
with fakes and do not import the packages they supervise.
*/
package services
