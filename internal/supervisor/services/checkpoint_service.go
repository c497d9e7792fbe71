// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package services

import (
	"context"
	"time"

	"github.com/tomtom215/trackguard/internal/logging"
)

// Checkpointer flushes the database WAL.
//
// Satisfied by *database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService periodically checkpoints DuckDB so the WAL stays small
// between restarts. A final checkpoint runs on shutdown.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService creates a checkpoint service. An interval <= 0
// defaults to 5 minutes.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CheckpointService{db: db, interval: interval, name: "duckdb-checkpoint"}
}

// Serve implements suture.Service.
func (c *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := c.db.Checkpoint(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Final checkpoint failed")
			}
			cancel()
			return ctx.Err()

		case <-ticker.C:
			if err := c.db.Checkpoint(ctx); err != nil {
				logging.Warn().Err(err).Msg("Periodic checkpoint failed")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
func (c *CheckpointService) String() string {
	return c.name
}
