// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_AddTimeRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		expected string
		args     int
	}{
		{"both", &start, &end, "detected_at >= ? AND detected_at <= ?", 2},
		{"start only", &start, nil, "detected_at >= ?", 1},
		{"end only", nil, &end, "detected_at <= ?", 1},
		{"neither", nil, nil, "1=1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			whereClause, args := NewWhereBuilder().AddTimeRange("detected_at", tt.start, tt.end).Build()
			if whereClause != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, whereClause)
			}
			if len(args) != tt.args {
				t.Errorf("Expected %d args, got %d", tt.args, len(args))
			}
		})
	}
}

func TestWhereBuilder_Combined(t *testing.T) {
	ack := false
	wb := NewWhereBuilder().
		AddIn("anomaly_type", []string{"FREQUENCY_ANOMALY", "TEMPORAL_CLUSTERING"}).
		AddIn("severity", nil).
		AddBool("acknowledged", &ack).
		AddClause("anomaly_score >= ?", 0.5)

	if wb.Count() != 3 {
		t.Errorf("Expected 3 clauses, got %d", wb.Count())
	}

	whereClause, args := wb.BuildWithPrefix()
	expected := "WHERE anomaly_type IN (?, ?) AND acknowledged = ? AND anomaly_score >= ?"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 4 {
		t.Fatalf("Expected 4 args, got %d", len(args))
	}
	if args[2] != false {
		t.Errorf("Expected acknowledged arg false, got %v", args[2])
	}
}
