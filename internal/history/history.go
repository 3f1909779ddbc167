// Package history keeps a bounded rolling price series per keyword.
package history

import (
	"context"
	"errors"
	"iter"
	"log"
	"slices"
	"sync"
	"time"

	"product-scout/internal/clock"
	"product-scout/internal/domain"
	"product-scout/internal/snapshot"
)

const (
	DefaultRetention  = 90 * 24 * time.Hour
	DefaultWindowDays = 30

	historySnapshotName = "price_history"
)

// Store owns the per-keyword point sequences. Points are kept in insertion
// order, which is chronological, and are never modified once recorded.
type Store struct {
	mu        sync.RWMutex
	clock     clock.Clock
	retention time.Duration
	points    map[string][]domain.HistoryPoint
}

func NewStore(clk clock.Clock, retention time.Duration) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		clock:     clk,
		retention: retention,
		points:    make(map[string][]domain.HistoryPoint),
	}
}

// Record appends point to key's series, then drops that series' points
// older than the retention window.
func (s *Store) Record(key string, point domain.HistoryPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := append(s.points[key], point)
	cutoff := s.clock.Now().Add(-s.retention)
	first := 0
	for first < len(series) && series[first].RecordedAt.Before(cutoff) {
		first++
	}
	if first > 0 {
		series = slices.Clone(series[first:])
	}
	s.points[key] = series
}

// Query yields key's points recorded within the last windowDays, oldest
// first. It reads a snapshot of the series taken when iteration starts, so
// the sequence can be ranged over more than once.
func (s *Store) Query(key string, windowDays int) iter.Seq[domain.HistoryPoint] {
	return func(yield func(domain.HistoryPoint) bool) {
		s.mu.RLock()
		series := s.points[key]
		cutoff := s.clock.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)
		s.mu.RUnlock()

		for _, p := range series {
			if p.RecordedAt.Before(cutoff) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

func (s *Store) Points(key string, windowDays int) []domain.HistoryPoint {
	return slices.Collect(s.Query(key, windowDays))
}

// Keys lists every keyword with at least one recorded point.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.points))
	for k, v := range s.points {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Trend compares the first and last average price of points.
func Trend(points []domain.HistoryPoint) string {
	if len(points) < 2 {
		return domain.TrendInsufficientData
	}
	if points[len(points)-1].AvgPrice > points[0].AvgPrice {
		return domain.TrendIncreasing
	}
	return domain.TrendDecreasing
}

// Summarize builds the trend view attached to findings.
func Summarize(points []domain.HistoryPoint) domain.PriceTrend {
	return domain.PriceTrend{
		DataPoints: len(points),
		Trend:      Trend(points),
		Points:     points,
	}
}

// Load replaces the stored series with the snapshot. Any failure leaves the
// store empty; a missing snapshot is not an error.
func (s *Store) Load(ctx context.Context, store snapshot.Store) error {
	loaded := make(map[string][]domain.HistoryPoint)
	err := store.Load(ctx, historySnapshotName, &loaded)

	s.mu.Lock()
	defer s.mu.Unlock()

	if errors.Is(err, snapshot.ErrNotFound) {
		s.points = make(map[string][]domain.HistoryPoint)
		return nil
	}
	if err != nil {
		s.points = make(map[string][]domain.HistoryPoint)
		return err
	}
	if loaded == nil {
		loaded = make(map[string][]domain.HistoryPoint)
	}
	s.points = loaded
	log.Printf("Loaded price history for %d keywords", len(loaded))
	return nil
}

func (s *Store) Save(ctx context.Context, store snapshot.Store) error {
	s.mu.RLock()
	copied := make(map[string][]domain.HistoryPoint, len(s.points))
	for k, v := range s.points {
		copied[k] = v
	}
	s.mu.RUnlock()

	return store.Save(ctx, historySnapshotName, copied)
}
