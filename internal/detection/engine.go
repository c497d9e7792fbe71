// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package detection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

// Engine coordinates an analysis pass across all detectors.
type Engine struct {
	source     SightingSource
	exclusions ExclusionChecker
	sink       AnomalySink
	scorer     ModelScorer
	config     Config
	clock      func() time.Time

	deviceDetectors   []DeviceDetector
	categoryDetectors []CategoryDetector

	// passMu serializes passes so a manual run never overlaps a scheduled one.
	passMu sync.Mutex
	mu     sync.RWMutex
}

// PassResult summarizes one analysis pass.
type PassResult struct {
	CorrelationID   string                     `json:"correlation_id"`
	StartedAt       time.Time                  `json:"started_at"`
	DurationMs      int64                      `json:"duration_ms"`
	DevicesAnalyzed int                        `json:"devices_analyzed"`
	DevicesSkipped  int                        `json:"devices_skipped"`
	DevicesExcluded int                        `json:"devices_excluded"`
	RecordsEmitted  int                        `json:"records_emitted"`
	RecordsByType   map[models.AnomalyType]int `json:"records_by_type"`
}

// NewEngine creates an engine with the five statistical detectors registered.
// exclusions may be nil, in which case no device is excluded.
func NewEngine(source SightingSource, exclusions ExclusionChecker, sink AnomalySink, config Config) *Engine {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Engine{
		source:     source,
		exclusions: exclusions,
		sink:       sink,
		config:     config,
		clock:      time.Now,
		deviceDetectors: []DeviceDetector{
			NewTemporalClusteringDetector(config),
			NewGeographicTrackingDetector(config),
			NewFrequencyDetector(config),
		},
		categoryDetectors: []CategoryDetector{
			NewCorrelationDetector(config),
			NewDeviceClusterDetector(config),
		},
	}
}

// SetModelScorer attaches the ML detector used for ML_BASED_ANOMALY records.
func (e *Engine) SetModelScorer(scorer ModelScorer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scorer = scorer
}

// SetClock overrides the clock that anchors analysis windows.
func (e *Engine) SetClock(clock func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = clock
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// SetDetectorEnabled enables or disables the detector for anomalyType.
// It returns false when no detector handles that type.
func (e *Engine) SetDetectorEnabled(anomalyType models.AnomalyType, enabled bool) bool {
	found := false
	for _, d := range e.deviceDetectors {
		if d.Type() == anomalyType {
			d.SetEnabled(enabled)
			found = true
		}
	}
	for _, d := range e.categoryDetectors {
		if d.Type() == anomalyType {
			d.SetEnabled(enabled)
			found = true
		}
	}
	if found {
		logging.Info().Str("detector", string(anomalyType)).Bool("enabled", enabled).Msg("Detector toggled")
	}
	return found
}

// DetectorStatus returns the enabled flag of every registered detector.
func (e *Engine) DetectorStatus() map[models.AnomalyType]bool {
	status := make(map[models.AnomalyType]bool, len(e.deviceDetectors)+len(e.categoryDetectors))
	for _, d := range e.deviceDetectors {
		status[d.Type()] = d.Enabled()
	}
	for _, d := range e.categoryDetectors {
		status[d.Type()] = d.Enabled()
	}
	return status
}

// RunAnalysisPass analyzes every category and device and inserts the
// resulting anomaly records into the sink.
//
// The first collaborator failure stops the pass and is returned wrapped in
// ErrCollaborator. Records inserted before the failure are kept. A correlation
// ID already on ctx is reused for the pass logs.
func (e *Engine) RunAnalysisPass(ctx context.Context) (*PassResult, error) {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	e.mu.RLock()
	now := e.clock()
	scorer := e.scorer
	e.mu.RUnlock()

	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}
	start := time.Now()
	stats := newPassStats()

	err := e.runPass(ctx, now, scorer, stats)

	result := stats.result()
	result.CorrelationID = logging.CorrelationIDFromContext(ctx)
	result.StartedAt = now
	result.DurationMs = time.Since(start).Milliseconds()

	metrics.RecordAnalysisPass(time.Since(start), result.DevicesAnalyzed, err)

	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Int("devices", result.DevicesAnalyzed).
			Int("records", result.RecordsEmitted).
			Msg("Analysis pass failed")
		return result, err
	}

	logging.Ctx(ctx).Info().
		Int("devices", result.DevicesAnalyzed).
		Int("skipped", result.DevicesSkipped).
		Int("excluded", result.DevicesExcluded).
		Int("records", result.RecordsEmitted).
		Int64("duration_ms", result.DurationMs).
		Msg("Analysis pass complete")

	return result, nil
}

type deviceTask struct {
	category models.DeviceCategory
	address  string
}

// runPass fans out one task per address. An address reported under several
// categories is analyzed once, under the first category in AllCategories order.
func (e *Engine) runPass(ctx context.Context, now time.Time, scorer ModelScorer, stats *passStats) error {
	var tasks []deviceTask
	seen := make(map[string]bool)
	for _, category := range models.AllCategories() {
		if err := ctx.Err(); err != nil {
			return err
		}
		addresses, err := e.source.DistinctDeviceAddresses(ctx, category)
		if err != nil {
			return collaboratorError("list device addresses", err)
		}
		sort.Strings(addresses)
		for _, addr := range addresses {
			if seen[addr] {
				continue
			}
			seen[addr] = true
			tasks = append(tasks, deviceTask{category: category, address: addr})
		}
	}

	excl := newExclusionCache(e.exclusions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return e.analyzeDevice(gctx, task, now, scorer, excl, stats)
		})
	}
	for _, category := range models.AllCategories() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return e.analyzeCategory(gctx, category, now, excl, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// analyzeDevice runs the per-device detectors on one device's window.
func (e *Engine) analyzeDevice(ctx context.Context, task deviceTask, now time.Time, scorer ModelScorer, excl *exclusionCache, stats *passStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	excluded, err := excl.check(ctx, task.address)
	if err != nil {
		return collaboratorError("check exclusion", err)
	}
	if excluded {
		stats.excluded()
		return nil
	}

	sightings, err := e.source.SightingsForDevice(ctx, task.address, now.Add(-e.config.AnalysisWindow), now)
	if err != nil {
		return collaboratorError("load device sightings", err)
	}
	if len(sightings) < e.config.MinSightings {
		stats.skipped()
		return nil
	}
	stats.analyzed()

	sorted := models.SortSightings(sightings)

	var records []*models.AnomalyDetection
	for _, d := range e.deviceDetectors {
		if d.Enabled() {
			records = append(records, d.Detect(task.address, task.category, sorted, now)...)
		}
	}
	if rec := e.mlRecord(scorer, task.address, task.category, sorted, now); rec != nil {
		records = append(records, rec)
	}

	return e.emit(ctx, records, stats)
}

// analyzeCategory runs the cross-device detectors over one category.
func (e *Engine) analyzeCategory(ctx context.Context, category models.DeviceCategory, now time.Time, excl *exclusionCache, stats *passStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lookback := e.config.AnalysisWindow
	if e.config.ClusterWindow > lookback {
		lookback = e.config.ClusterWindow
	}

	sightings, err := e.source.AllSightingsForCategoryInRange(ctx, category, now.Add(-lookback), now)
	if err != nil {
		return collaboratorError("load category sightings", err)
	}
	if len(sightings) == 0 {
		return nil
	}
	sorted := models.SortSightings(sightings)

	excluded := make(map[string]bool)
	for i := range sorted {
		addr := sorted[i].Address
		if _, seen := excluded[addr]; seen {
			continue
		}
		isExcluded, err := excl.check(ctx, addr)
		if err != nil {
			return collaboratorError("check exclusion", err)
		}
		excluded[addr] = isExcluded
	}

	var records []*models.AnomalyDetection
	for _, d := range e.categoryDetectors {
		if !d.Enabled() {
			continue
		}
		found, err := d.Detect(ctx, category, sorted, excluded, now)
		if err != nil {
			return err
		}
		records = append(records, found...)
	}

	return e.emit(ctx, records, stats)
}

// mlRecord scores one device with the isolation forest.
func (e *Engine) mlRecord(scorer ModelScorer, address string, category models.DeviceCategory, sorted []models.Sighting, now time.Time) *models.AnomalyDetection {
	if !e.config.EmitMLRecords || scorer == nil || !scorer.IsModelReady() {
		return nil
	}
	score := scorer.PredictAnomalyScore(sorted)
	if score <= e.config.MLAnomalyThreshold {
		return nil
	}

	in := sightingRecordInput(models.AnomalyMLBased, category, []string{address}, sorted, now)
	in.Score = score
	in.Multiplier = confidenceML
	in.Evidence = evidence{Count: len(sorted)}
	return buildRecord(in)
}

// emit inserts records into the sink.
func (e *Engine) emit(ctx context.Context, records []*models.AnomalyDetection, stats *passStats) error {
	for _, rec := range records {
		if err := e.sink.InsertAnomaly(ctx, rec); err != nil {
			return collaboratorError("insert anomaly", err)
		}
		stats.recorded(rec.Type)
		metrics.RecordAnomaly(string(rec.Type), string(rec.Severity))

		logging.Ctx(ctx).Debug().
			Str("type", string(rec.Type)).
			Str("severity", string(rec.Severity)).
			Strs("devices", logging.RedactAddresses(rec.DeviceAddresses)).
			Float64("score", rec.AnomalyScore).
			Msg("Anomaly detected")
	}
	return nil
}

func collaboratorError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCollaborator, op, err)
}

// exclusionCache memoizes exclusion lookups for the duration of one pass.
type exclusionCache struct {
	checker ExclusionChecker
	mu      sync.Mutex
	known   map[string]bool
}

func newExclusionCache(checker ExclusionChecker) *exclusionCache {
	return &exclusionCache{checker: checker, known: make(map[string]bool)}
}

func (c *exclusionCache) check(ctx context.Context, address string) (bool, error) {
	if c.checker == nil {
		return false, nil
	}

	c.mu.Lock()
	v, ok := c.known[address]
	c.mu.Unlock()
	if ok {
		return v, nil
	}

	excluded, err := c.checker.IsExcluded(ctx, address)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.known[address] = excluded
	c.mu.Unlock()
	return excluded, nil
}

// passStats aggregates counters from concurrent sub-tasks.
type passStats struct {
	mu     sync.Mutex
	res    PassResult
	byType map[models.AnomalyType]int
}

func newPassStats() *passStats {
	return &passStats{byType: make(map[models.AnomalyType]int)}
}

func (s *passStats) analyzed() {
	s.mu.Lock()
	s.res.DevicesAnalyzed++
	s.mu.Unlock()
}

func (s *passStats) skipped() {
	s.mu.Lock()
	s.res.DevicesSkipped++
	s.mu.Unlock()
}

func (s *passStats) excluded() {
	s.mu.Lock()
	s.res.DevicesExcluded++
	s.mu.Unlock()
}

func (s *passStats) recorded(t models.AnomalyType) {
	s.mu.Lock()
	s.res.RecordsEmitted++
	s.byType[t]++
	s.mu.Unlock()
}

func (s *passStats) result() *PassResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.res
	r.RecordsByType = make(map[models.AnomalyType]int, len(s.byType))
	for k, v := range s.byType {
		r.RecordsByType[k] = v
	}
	return &r
}
