// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/trackguard/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type batchRequest struct {
	Sightings []models.Sighting `json:"sightings" validate:"required,min=1,max=3,dive"`
}

type filterRequest struct {
	Type     string `json:"type" validate:"omitempty,anomaly_type"`
	Severity string `json:"severity" validate:"omitempty,severity"`
	Limit    int    `json:"limit" validate:"min=0,max=1000"`
}

func validSighting() models.Sighting {
	return models.Sighting{
		Address:     "aa:bb:cc:dd:ee:ff",
		Category:    models.CategoryWiFi,
		TimestampMs: 1_700_000_000_000,
		Latitude:    models.Float64Ptr(52.52),
		Longitude:   models.Float64Ptr(13.405),
		Signal:      models.IntPtr(-70),
	}
}

func TestValidateStruct_Sightings(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.Sighting)
		wantField string
		wantTag   string
	}{
		{name: "valid", mutate: func(*models.Sighting) {}},
		{
			name:      "missing address",
			mutate:    func(s *models.Sighting) { s.Address = "" },
			wantField: "sightings[0].address",
			wantTag:   "required",
		},
		{
			name:      "unknown category",
			mutate:    func(s *models.Sighting) { s.Category = "ZIGBEE" },
			wantField: "sightings[0].category",
			wantTag:   "device_category",
		},
		{
			name:      "zero timestamp",
			mutate:    func(s *models.Sighting) { s.TimestampMs = 0 },
			wantField: "sightings[0].timestamp_ms",
			wantTag:   "required",
		},
		{
			name:      "latitude out of range",
			mutate:    func(s *models.Sighting) { s.Latitude = models.Float64Ptr(91) },
			wantField: "sightings[0].latitude",
			wantTag:   "latitude",
		},
		{
			name:      "signal too strong",
			mutate:    func(s *models.Sighting) { s.Signal = models.IntPtr(80) },
			wantField: "sightings[0].signal",
			wantTag:   "lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSighting()
			tt.mutate(&s)
			verr := ValidateStruct(&batchRequest{Sightings: []models.Sighting{s}})

			if tt.wantTag == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_BatchSize(t *testing.T) {
	verr := ValidateStruct(&batchRequest{})
	if verr == nil || verr.Errors()[0].Tag() != "required" {
		t.Errorf("empty batch: got %v, want required error", verr)
	}

	big := make([]models.Sighting, 4)
	for i := range big {
		big[i] = validSighting()
	}
	verr = ValidateStruct(&batchRequest{Sightings: big})
	if verr == nil {
		t.Fatal("expected error for oversized batch")
	}
	if msg := verr.Error(); msg != "sightings must be at most 3 items" {
		t.Errorf("message = %q", msg)
	}
}

func TestValidateStruct_DomainTags(t *testing.T) {
	tests := []struct {
		name    string
		input   filterRequest
		wantErr bool
	}{
		{"empty", filterRequest{}, false},
		{"known type", filterRequest{Type: "FREQUENCY_ANOMALY"}, false},
		{"unknown type", filterRequest{Type: "SPOOFING"}, true},
		{"known severity", filterRequest{Severity: "CRITICAL"}, false},
		{"lower-case severity", filterRequest{Severity: "high"}, true},
		{"limit too large", filterRequest{Limit: 5000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if (verr != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", verr, tt.wantErr)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	verr := ValidateStruct(&filterRequest{Severity: "SEVERE"})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "severity must be one of: LOW MEDIUM HIGH CRITICAL" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "severity" {
		t.Errorf("Details[field] = %v, want severity", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	verr := ValidateStruct(&filterRequest{Type: "X", Severity: "Y", Limit: -1})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %#v, want 3 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "limit must be at least 0") {
		t.Errorf("Message = %q, want limit message", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Message != "Validation failed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}
