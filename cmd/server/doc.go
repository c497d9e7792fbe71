// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

/*
Package main is the entry point for the TrackGuard server.

TrackGuard ingests sightings of nearby wireless devices (WiFi, Bluetooth and
others), periodically analyzes them for tracking and surveillance patterns,
and exposes the resulting anomaly records over a REST API.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("trackguard")
	├── DataSupervisor ("data-layer")
	│   └── DuckDB checkpoint service
	├── AnalysisSupervisor ("analysis-layer")
	│   └── Analysis scheduler (retrain, then run a pass)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog with JSON or console output
 3. Storage: DuckDB for sightings and anomalies, Badger for exclusions
 4. Analysis: detection engine behind a circuit breaker, isolation forest
 5. Supervisor tree and HTTP server

# Configuration

Priority: environment variables > config file > defaults. The config file is
searched at config.yaml, config.yml and /etc/trackguard/, or read from
CONFIG_PATH.

Common environment variables:

	HTTP_PORT=8742
	DUCKDB_PATH=/data/trackguard.duckdb
	EXCLUSIONS_PATH=/data/exclusions
	ANALYSIS_INTERVAL=15m
	ANALYSIS_DISABLED_DETECTORS=CORRELATION_PATTERN
	ML_ENABLED=true
	ML_SEED=42
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the checkpoint service flushes the DuckDB WAL, and both stores are
closed before the process exits.
*/
package main
