// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package exclusion keeps the user-managed set of device addresses that are
// exempt from anomaly analysis. Entries live in BadgerDB as JSON values keyed
// by normalized address.
package exclusion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/trackguard/internal/logging"
	"github.com/tomtom215/trackguard/internal/metrics"
	"github.com/tomtom215/trackguard/internal/models"
)

const keyPrefix = "exclusion:"

// ErrNotFound is returned when removing an address that is not excluded.
var ErrNotFound = errors.New("exclusion not found")

// ErrEmptyAddress is returned when an address is blank after normalization.
var ErrEmptyAddress = errors.New("exclusion address must not be empty")

// Store is a BadgerDB-backed exclusion set. It implements
// detection.ExclusionChecker.
type Store struct {
	db    *badger.DB
	clock func() time.Time
}

// Open opens (or creates) the exclusion store at path. With inMemory set the
// path is ignored and nothing touches disk.
func Open(path string, inMemory bool) (*Store, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create exclusion directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open exclusion store: %w", err)
	}

	s := &Store{db: db, clock: time.Now}
	count, err := s.Count(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.SetExclusionsActive(count)

	logging.Info().Str("path", path).Bool("in_memory", inMemory).Int("entries", count).Msg("Exclusion store opened")
	return s, nil
}

// SetClock overrides the time source used for AddedAt. Intended for tests.
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close exclusion store: %w", err)
	}
	return nil
}

// NormalizeAddress trims whitespace and upper-cases an address so that
// lookups are case-insensitive.
func NormalizeAddress(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}

func key(address string) []byte {
	return []byte(keyPrefix + NormalizeAddress(address))
}

// Add excludes an address. Re-adding an address replaces its reason and keeps
// the original AddedAt.
func (s *Store) Add(ctx context.Context, address, reason string) (*models.ExclusionEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return nil, ErrEmptyAddress
	}

	entry := &models.ExclusionEntry{
		Address: normalized,
		Reason:  strings.TrimSpace(reason),
		AddedAt: s.clock().UTC(),
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(normalized)
		item, err := txn.Get(k)
		switch {
		case err == nil:
			var existing models.ExclusionEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("unmarshal exclusion: %w", err)
			}
			entry.AddedAt = existing.AddedAt
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("get exclusion: %w", err)
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal exclusion: %w", err)
		}
		return txn.Set(k, data)
	})
	if err != nil {
		return nil, err
	}

	s.refreshGauge(ctx)
	logging.Ctx(ctx).Info().Str("address", logging.RedactAddress(normalized)).Msg("Device excluded from analysis")
	return entry, nil
}

// Remove deletes an exclusion. It returns ErrNotFound when the address was
// not excluded.
func (s *Store) Remove(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized := NormalizeAddress(address)

	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(normalized)
		if _, err := txn.Get(k); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", logging.RedactAddress(normalized), ErrNotFound)
		} else if err != nil {
			return fmt.Errorf("get exclusion: %w", err)
		}
		return txn.Delete(k)
	})
	if err != nil {
		return err
	}

	s.refreshGauge(ctx)
	logging.Ctx(ctx).Info().Str("address", logging.RedactAddress(normalized)).Msg("Device exclusion removed")
	return nil
}

// IsExcluded reports whether address is in the exclusion set.
func (s *Store) IsExcluded(ctx context.Context, address string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	excluded := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(address))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get exclusion: %w", err)
		}
		excluded = true
		return nil
	})
	return excluded, err
}

// List returns every exclusion ordered by address.
func (s *Store) List(ctx context.Context) ([]models.ExclusionEntry, error) {
	entries := make([]models.ExclusionEntry, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry models.ExclusionEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("unmarshal exclusion: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	return entries, nil
}

// Count returns the number of excluded addresses.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("count exclusions: %w", err)
	}
	return count, nil
}

func (s *Store) refreshGauge(ctx context.Context) {
	count, err := s.Count(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to refresh exclusion gauge")
		return
	}
	metrics.SetExclusionsActive(count)
}
