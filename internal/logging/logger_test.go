// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// captureLogs swaps the global logger for one writing to a buffer until the
// test ends.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer

	mu.Lock()
	prev := log
	log = zerolog.New(&buf)
	mu.Unlock()

	t.Cleanup(func() {
		mu.Lock()
		log = prev
		mu.Unlock()
	})
	return &buf
}

// restoreLevel puts the global level back when the test ends.
func restoreLevel(t *testing.T) {
	t.Helper()
	original := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(original) })
}

// initForTest calls Init and restores defaults when the test ends.
func initForTest(t *testing.T, cfg Config) {
	t.Helper()
	restoreLevel(t)
	Init(cfg)
	t.Cleanup(func() { Init(DefaultConfig()) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Caller || cfg.Output == nil {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	initForTest(t, Config{Level: "debug", Format: "json", Output: &buf})

	Debug().Str("address", "AA:BB:CC:**:**:**").Msg("pass started")

	output := buf.String()
	for _, want := range []string{`"level":"debug"`, `"message":"pass started"`, `"time":`, `"address"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
	if CurrentLevel() != "debug" {
		t.Errorf("CurrentLevel() = %q, want debug", CurrentLevel())
	}
}

func TestInit_Caller(t *testing.T) {
	var buf bytes.Buffer
	initForTest(t, Config{Output: &buf, Caller: true})

	Info().Msg("with caller")

	if !strings.Contains(buf.String(), `"caller":`) {
		t.Errorf("expected caller field: %s", buf.String())
	}
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	initForTest(t, Config{Format: "console", Output: &buf})

	Info().Msg("console test")

	output := buf.String()
	if !strings.Contains(output, "console test") || strings.Contains(output, `"level"`) {
		t.Errorf("expected console output: %s", output)
	}
}

func TestInit_EmptyLevel(t *testing.T) {
	initForTest(t, Config{Output: &bytes.Buffer{}})
	if CurrentLevel() != "info" {
		t.Errorf("CurrentLevel() = %q, want info", CurrentLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelHelpers(t *testing.T) {
	buf := captureLogs(t)
	restoreLevel(t)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	tests := []struct {
		name  string
		log   func()
		level string
	}{
		{"Debug", func() { Debug().Msg("m") }, `"level":"debug"`},
		{"Info", func() { Info().Msg("m") }, `"level":"info"`},
		{"Warn", func() { Warn().Msg("m") }, `"level":"warn"`},
		{"Error", func() { Error().Msg("m") }, `"level":"error"`},
		{"Err", func() { Err(errors.New("badger closed")).Msg("m") }, `"error":"badger closed"`},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.log()
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("%s: expected %s in %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t)
	restoreLevel(t)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	Info().Msg("dropped")
	Warn().Msg("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("unexpected output at warn level: %s", buf.String())
	}
	if CurrentLevel() != "warn" {
		t.Errorf("CurrentLevel() = %q, want warn", CurrentLevel())
	}
}

func TestWith(t *testing.T) {
	buf := captureLogs(t)

	l := With().Str("component", "exclusion").Logger()
	l.Info().Msg("opened")

	if !strings.Contains(buf.String(), `"component":"exclusion"`) {
		t.Errorf("expected component field: %s", buf.String())
	}
}
