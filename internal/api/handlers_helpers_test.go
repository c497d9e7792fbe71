// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/trackguard/internal/models"
)

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"ünïcode", "ünïcode"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"HIGH", []string{"HIGH"}},
		{" HIGH , LOW ,, ", []string{"HIGH", "LOW"}},
	}
	for _, tt := range tests {
		if got := parseCommaSeparated(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCommaSeparated(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 100},
		{"limit=25", 25},
		{"limit=-3", -3},
		{"limit=abc", 100},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if got := getIntParam(req, "limit", 100); got != tt.want {
			t.Errorf("getIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestRespondJSON_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusAccepted, &models.APIResponse{Status: "success", Data: map[string]int{"n": 1}})

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("ETag") != generateETag(rec.Body.Bytes()) {
		t.Error("ETag does not match body")
	}
}

func TestRespondError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusConflict, "SOME_CODE", "Something conflicted", errors.New("detail\ninjected"))

	env := decodeEnvelope(t, rec, nil)
	if env.Status != "error" || env.Error.Code != "SOME_CODE" || env.Error.Message != "Something conflicted" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if strings.Contains(rec.Body.String(), "injected") {
		t.Error("internal error text leaked into the response")
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"address": "aa"}`, false},
		{"trailing object", `{"address": "aa"}{"address": "bb"}`, true},
		{"trailing garbage", `{"address": "aa"} x`, true},
		{"empty", ``, true},
		{"oversized", `{"address": "` + strings.Repeat("a", maxBodyBytes) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst ExclusionRequest
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeJSON error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseAnomalyListRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/?type=FREQUENCY_ANOMALY,CORRELATION_PATTERN&severity=HIGH&acknowledged=false"+
			"&start_date=2026-03-01T00:00:00Z&end_date=2026-03-02T00:00:00Z&limit=20&offset=40", nil)

	parsed, err := parseAnomalyListRequest(req)
	if err != nil {
		t.Fatalf("parseAnomalyListRequest failed: %v", err)
	}
	filter := parsed.Filter()

	if !reflect.DeepEqual(filter.Types, []models.AnomalyType{models.AnomalyFrequency, models.AnomalyCorrelationPattern}) {
		t.Errorf("types = %v", filter.Types)
	}
	if !reflect.DeepEqual(filter.Severities, []models.Severity{models.SeverityHigh}) {
		t.Errorf("severities = %v", filter.Severities)
	}
	if filter.Acknowledged == nil || *filter.Acknowledged {
		t.Errorf("acknowledged = %v, want false", filter.Acknowledged)
	}
	if filter.StartDate == nil || filter.EndDate == nil || filter.EndDate.Sub(*filter.StartDate).Hours() != 24 {
		t.Errorf("date range = %v..%v", filter.StartDate, filter.EndDate)
	}
	if filter.Limit != 20 || filter.Offset != 40 {
		t.Errorf("limit/offset = %d/%d", filter.Limit, filter.Offset)
	}
}

func TestParseAnomalyListRequest_Defaults(t *testing.T) {
	parsed, err := parseAnomalyListRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("parseAnomalyListRequest failed: %v", err)
	}
	if parsed.Limit != defaultAnomalyLimit || parsed.Offset != 0 {
		t.Errorf("limit/offset = %d/%d", parsed.Limit, parsed.Offset)
	}
	if parsed.Acknowledged != nil || parsed.StartDate != nil || parsed.Types != nil {
		t.Errorf("unexpected filters %+v", parsed)
	}
}
