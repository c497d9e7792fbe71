// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package supervisor provides process supervision for TrackGuard using suture v4.

Long-running services are grouped into three layers so that a failure in one
layer restarts only that layer:

	RootSupervisor ("trackguard")
	├── DataSupervisor ("data-layer")
	│   └── CheckpointService
	├── AnalysisSupervisor ("analysis-layer")
	│   └── AnalysisService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events are logged through slog using the sutureslog adapter. In
production the slog handler forwards to zerolog (see logging.NewSlogLogger).

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCheckpointService(db, time.Minute))
	tree.AddAnalysisService(services.NewAnalysisService(coordinator, cfg))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
