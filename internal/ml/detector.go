// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package ml wraps the isolation forest in a detector that trains from raw
// sighting history and scores new sightings.
//
// The detector moves one way from untrained to trained. Each TrainModel call
// builds a complete new forest and publishes it with an atomic pointer swap,
// so scoring never observes a partially built model and never blocks on
// training.
package ml

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/trackguard/internal/features"
	"github.com/tomtom215/trackguard/internal/forest"
	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

const (
	// DefaultTrees is the default number of trees per forest.
	DefaultTrees = 100

	// DefaultSubsampleSize is the default per-tree subsample size.
	DefaultSubsampleSize = 256
)

// snapshot is an immutable trained model.
type snapshot struct {
	forest    *forest.Forest
	trainedAt time.Time
	devices   int
}

// Detector trains and queries an isolation forest over device features.
type Detector struct {
	trainMu sync.Mutex
	current atomic.Pointer[snapshot]

	seed  int64
	clock func() time.Time
}

// NewDetector creates an untrained detector. Every training run draws its
// randomness from a generator seeded with seed, so identical history always
// yields an identical forest.
func NewDetector(seed int64) *Detector {
	return &Detector{
		seed:  seed,
		clock: time.Now,
	}
}

// SetClock overrides the clock used to stamp training time.
func (d *Detector) SetClock(clock func() time.Time) {
	d.clock = clock
}

// TrainModel extracts per-device features from history and replaces the
// current forest. It is a no-op when no features can be extracted.
// Concurrent calls are serialized.
func (d *Detector) TrainModel(history []models.Sighting, numberOfTrees, subsampleSize int) {
	d.trainMu.Lock()
	defer d.trainMu.Unlock()

	start := time.Now()

	deviceFeatures := features.ExtractAll(history)
	if len(deviceFeatures) == 0 {
		logging.Debug().Msg("Skipping model training: no device features")
		return
	}

	vectors := make([][]float64, len(deviceFeatures))
	for i := range deviceFeatures {
		vectors[i] = deviceFeatures[i].ToArray()
	}

	sampleSize := subsampleSize
	if sampleSize > len(vectors) {
		sampleSize = len(vectors)
	}

	rng := rand.New(rand.NewSource(d.seed)) //nolint:gosec // model sampling, not security
	f := forest.Train(vectors, numberOfTrees, sampleSize, rng)

	d.current.Store(&snapshot{
		forest:    f,
		trainedAt: d.clock(),
		devices:   len(vectors),
	})

	metrics.RecordModelTraining(time.Since(start), len(vectors))
	metrics.SetModelReady(f.Trained())

	logging.Info().
		Int("devices", len(vectors)).
		Int("trees", f.Size()).
		Int("sample_size", sampleSize).
		Dur("duration", time.Since(start)).
		Msg("Isolation forest trained")
}

// PredictAnomalyScore returns the mean forest score across the devices present
// in sightings. It returns 0 when the model is untrained or sightings is empty.
func (d *Detector) PredictAnomalyScore(sightings []models.Sighting) float64 {
	snap := d.current.Load()
	if snap == nil || !snap.forest.Trained() {
		return 0
	}

	deviceFeatures := features.ExtractAll(sightings)
	if len(deviceFeatures) == 0 {
		return 0
	}

	var total float64
	for i := range deviceFeatures {
		total += snap.forest.Score(deviceFeatures[i].ToArray())
	}
	return total / float64(len(deviceFeatures))
}

// IsModelReady reports whether a trained forest is available.
func (d *Detector) IsModelReady() bool {
	snap := d.current.Load()
	return snap != nil && snap.forest.Trained()
}

// RecordFeedback accepts user feedback on a batch of sightings. Features are
// extracted for future use but the model itself is never updated here;
// retraining is the only way the forest changes.
func (d *Detector) RecordFeedback(sightings []models.Sighting, falsePositive bool) {
	deviceFeatures := features.ExtractAll(sightings)
	metrics.RecordModelFeedback(falsePositive)

	logging.Debug().
		Int("devices", len(deviceFeatures)).
		Bool("false_positive", falsePositive).
		Msg("Feedback recorded")
}

// Status describes the current model.
func (d *Detector) Status() models.ModelStatus {
	snap := d.current.Load()
	if snap == nil {
		return models.ModelStatus{}
	}
	trainedAt := snap.trainedAt
	return models.ModelStatus{
		Ready:       snap.forest.Trained(),
		TrainedAt:   &trainedAt,
		Trees:       snap.forest.Size(),
		SampleSize:  snap.forest.SampleSize(),
		DeviceCount: snap.devices,
	}
}
