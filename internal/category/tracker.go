package category

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"product-scout/internal/clock"
	"product-scout/internal/domain"
	"product-scout/internal/snapshot"
)

const (
	DefaultCooldown = 12 * time.Hour

	trackerSnapshotName = "category_performance"
	profitCap           = 10.0
)

// Tracker holds cumulative scan performance per category.
type Tracker struct {
	mu       sync.RWMutex
	clock    clock.Clock
	cooldown time.Duration
	stats    map[string]*domain.CategoryStats
}

func NewTracker(clk clock.Clock, cooldown time.Duration) *Tracker {
	if clk == nil {
		clk = clock.Real{}
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Tracker{
		clock:    clk,
		cooldown: cooldown,
		stats:    make(map[string]*domain.CategoryStats),
	}
}

// Seed creates default stats for every name not tracked yet.
func (t *Tracker) Seed(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		t.ensure(name)
	}
}

func (t *Tracker) ensure(name string) *domain.CategoryStats {
	s, ok := t.stats[name]
	if !ok {
		s = domain.NewCategoryStats()
		t.stats[name] = s
	}
	return s
}

// ShouldScan reports whether the category was never scanned or its last
// scan is at least the cooldown old. Score plays no part.
func (t *Tracker) ShouldScan(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.stats[name]
	if !ok || s.LastScannedAt == nil {
		return true
	}
	return t.clock.Now().Sub(*s.LastScannedAt) >= t.cooldown
}

// Update folds one cycle's findings for a category into its running stats
// and marks it scanned. An empty batch leaves the means untouched but still
// starts the cooldown, so a category with no data is not retried every cycle.
func (t *Tracker) Update(name string, findings []domain.Finding) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.ensure(name)
	now := t.clock.Now()
	s.LastScannedAt = &now
	if len(findings) == 0 {
		return
	}

	var profitable int
	var sumProfit, sumMargin float64
	for _, f := range findings {
		if f.MeetsThreshold {
			profitable++
		}
		sumProfit += f.Profit
		sumMargin += f.Margin
	}

	prevTotal := float64(s.TotalScanned)
	s.TotalScanned += len(findings)
	s.ProfitableFound += profitable
	total := float64(s.TotalScanned)
	s.AvgProfit = (s.AvgProfit*prevTotal + sumProfit) / total
	s.AvgMargin = (s.AvgMargin*prevTotal + sumMargin) / total
	s.SuccessRate = float64(s.ProfitableFound) / total * 100
	s.Score = score(s.SuccessRate, s.AvgProfit)
}

func score(successRate, avgProfit float64) int {
	v := math.Floor(successRate*0.6 + math.Min(avgProfit, profitCap)/profitCap*40)
	return int(math.Max(0, math.Min(100, v)))
}

// Score returns the category's score, or the neutral default if unknown.
func (t *Tracker) Score(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.stats[name]; ok {
		return s.Score
	}
	return domain.DefaultCategoryScore
}

// Stats returns a copy of the category's stats.
func (t *Tracker) Stats(name string) (domain.CategoryStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.stats[name]
	if !ok {
		return domain.CategoryStats{}, false
	}
	return *s, true
}

// All returns a copy of every tracked category's stats.
func (t *Tracker) All() map[string]domain.CategoryStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]domain.CategoryStats, len(t.stats))
	for name, s := range t.stats {
		out[name] = *s
	}
	return out
}

// TopCategories returns up to n categories by score descending, ties by
// name ascending.
func (t *Tracker) TopCategories(n int) []domain.CategoryRank {
	t.mu.RLock()
	ranks := make([]domain.CategoryRank, 0, len(t.stats))
	for name, s := range t.stats {
		ranks = append(ranks, domain.CategoryRank{
			Category:    name,
			Score:       s.Score,
			SuccessRate: s.SuccessRate,
			AvgProfit:   s.AvgProfit,
		})
	}
	t.mu.RUnlock()

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		return ranks[i].Category < ranks[j].Category
	})
	if n >= 0 && n < len(ranks) {
		ranks = ranks[:n]
	}
	return ranks
}

// Load replaces tracked stats with the snapshot. Any failure leaves the
// tracker empty; a missing snapshot is not an error.
func (t *Tracker) Load(ctx context.Context, store snapshot.Store) error {
	loaded := make(map[string]*domain.CategoryStats)
	err := store.Load(ctx, trackerSnapshotName, &loaded)

	t.mu.Lock()
	defer t.mu.Unlock()

	if errors.Is(err, snapshot.ErrNotFound) {
		t.stats = make(map[string]*domain.CategoryStats)
		return nil
	}
	if err != nil {
		t.stats = make(map[string]*domain.CategoryStats)
		return err
	}
	if loaded == nil {
		loaded = make(map[string]*domain.CategoryStats)
	}
	for name, s := range loaded {
		if s == nil {
			delete(loaded, name)
		}
	}
	t.stats = loaded
	log.Printf("Loaded performance data for %d categories", len(loaded))
	return nil
}

func (t *Tracker) Save(ctx context.Context, store snapshot.Store) error {
	return store.Save(ctx, trackerSnapshotName, t.All())
}
