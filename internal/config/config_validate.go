// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// knownDetectors are the anomaly types accepted in analysis.disabled_detectors.
var knownDetectors = map[string]bool{
	"TEMPORAL_CLUSTERING": true,
	"GEOGRAPHIC_TRACKING": true,
	"FREQUENCY_ANOMALY":   true,
	"CORRELATION_PATTERN": true,
	"NEW_DEVICE_CLUSTER":  true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return formatValidationError(err)
	}

	validators := []func() error{
		c.validateExclusions,
		c.validateAnalysis,
		c.validateML,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// formatValidationError flattens validator field errors into one message.
func formatValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func (c *Config) validateExclusions() error {
	if !c.Exclusions.InMemory && c.Exclusions.Path == "" {
		return fmt.Errorf("EXCLUSIONS_PATH is required unless EXCLUSIONS_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.ClusterBucket > a.ClusterWindow {
		return fmt.Errorf("analysis.cluster_bucket (%s) must not exceed analysis.cluster_window (%s)",
			a.ClusterBucket, a.ClusterWindow)
	}
	if a.CorrelationBucket > a.Window {
		return fmt.Errorf("analysis.correlation_bucket (%s) must not exceed analysis.window (%s)",
			a.CorrelationBucket, a.Window)
	}
	if a.MinSightingsForFrequency < a.MinSightings {
		return fmt.Errorf("analysis.min_sightings_for_frequency (%d) must be at least analysis.min_sightings (%d)",
			a.MinSightingsForFrequency, a.MinSightings)
	}
	for _, d := range a.DisabledDetectors {
		if !knownDetectors[strings.ToUpper(d)] {
			return fmt.Errorf("analysis.disabled_detectors: unknown detector %q", d)
		}
	}
	return nil
}

func (c *Config) validateML() error {
	if c.ML.Enabled && c.ML.TrainingWindow < c.Analysis.Window {
		return fmt.Errorf("ml.training_window (%s) should cover at least analysis.window (%s)",
			c.ML.TrainingWindow, c.Analysis.Window)
	}
	return nil
}
