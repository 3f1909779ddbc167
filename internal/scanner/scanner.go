// Package scanner runs scan cycles: pick categories, price every keyword,
// score the results and persist state.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"product-scout/internal/alert"
	"product-scout/internal/cache"
	"product-scout/internal/category"
	"product-scout/internal/clock"
	"product-scout/internal/domain"
	"product-scout/internal/history"
	"product-scout/internal/provider"
	"product-scout/internal/snapshot"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrCycleInProgress = errors.New("scan cycle already in progress")
	ErrNoKeywords      = errors.New("no keywords selected for scanning")
)

// PriceLookup fetches the sold-price summary for a keyword. A nil summary
// with a nil error means the marketplace had no data.
type PriceLookup interface {
	FindCompleted(ctx context.Context, keyword string) (*domain.PriceSummary, error)
}

type CostEstimator interface {
	Estimate(keyword string) float64
}

type DemandEstimator interface {
	Estimate(keyword string) domain.Demand
}

type Limiter interface {
	Acquire(ctx context.Context) error
	Stats() domain.RateLimitStats
}

// RunRecorder stores finished cycles.
type RunRecorder interface {
	SaveRun(ctx context.Context, result *domain.ScanResult) (int64, error)
}

// Observer is notified once per finished cycle.
type Observer interface {
	ObserveCycle(result domain.ScanResult, err error)
}

type Config struct {
	MaxCategories     int
	Threshold         Threshold
	IncludeAll        bool
	PriceHistory      bool
	CategoryScan      bool
	Enrichment        bool
	StaticCategories  []string
	RemoteTimeout     time.Duration
	HistoryWindowDays int
	Alert             alert.Policy
}

func DefaultConfig() Config {
	return Config{
		MaxCategories:     5,
		Threshold:         DefaultThreshold(),
		IncludeAll:        true,
		PriceHistory:      true,
		CategoryScan:      true,
		Enrichment:        true,
		RemoteTimeout:     10 * time.Second,
		HistoryWindowDays: history.DefaultWindowDays,
		Alert:             alert.DefaultPolicy(),
	}
}

// Deps are the collaborators of a Scanner. Alerts, Demand, Runs and
// Observer may be nil.
type Deps struct {
	Clock     clock.Clock
	Limiter   Limiter
	Cache     *cache.TTLCache
	History   *history.Store
	Tracker   *category.Tracker
	Catalog   *category.Catalog
	Lookup    PriceLookup
	Costs     CostEstimator
	Demand    DemandEstimator
	Alerts    alert.Sink
	Snapshots snapshot.Store
	Runs      RunRecorder
	Observer  Observer
}

type Scanner struct {
	tracer trace.Tracer
	cfg    Config
	deps   Deps

	selector *category.Selector
	cycle    sync.Mutex
	running  atomic.Bool

	lastMu sync.RWMutex
	last   *domain.ScanResult
}

func NewScanner(tracer trace.Tracer, cfg Config, deps Deps) *Scanner {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if cfg.MaxCategories <= 0 {
		cfg.MaxCategories = 5
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 10 * time.Second
	}
	if cfg.HistoryWindowDays <= 0 {
		cfg.HistoryWindowDays = history.DefaultWindowDays
	}
	return &Scanner{
		tracer:   tracer,
		cfg:      cfg,
		deps:     deps,
		selector: category.NewSelector(deps.Catalog, deps.Tracker),
	}
}

// SetObserver replaces the cycle observer. Call it before the first cycle.
func (s *Scanner) SetObserver(o Observer) {
	s.deps.Observer = o
}

// LoadState restores cache, history and category stats from the snapshot
// store. Failures are logged and leave that store empty.
func (s *Scanner) LoadState(ctx context.Context) {
	if s.deps.Snapshots == nil {
		s.deps.Tracker.Seed(s.deps.Catalog.Names())
		return
	}
	if err := s.deps.Cache.Load(ctx, s.deps.Snapshots); err != nil {
		log.Printf("failed to load price cache, starting empty: %v", err)
	}
	if err := s.deps.History.Load(ctx, s.deps.Snapshots); err != nil {
		log.Printf("failed to load price history, starting empty: %v", err)
	}
	if err := s.deps.Tracker.Load(ctx, s.deps.Snapshots); err != nil {
		log.Printf("failed to load category performance, starting fresh: %v", err)
	}
	s.deps.Tracker.Seed(s.deps.Catalog.Names())
}

// RunCycle scans once. A concurrent call fails fast with ErrCycleInProgress.
// If ctx is cancelled mid-cycle the partial result is still aggregated and
// persisted, and ctx.Err() is returned with it.
func (s *Scanner) RunCycle(ctx context.Context) (domain.ScanResult, error) {
	if !s.cycle.TryLock() {
		return domain.ScanResult{}, ErrCycleInProgress
	}
	defer s.cycle.Unlock()
	s.running.Store(true)
	defer s.running.Store(false)

	ctx, span := s.tracer.Start(ctx, "scanner.run-cycle")
	defer span.End()

	result := domain.ScanResult{StartedAt: s.deps.Clock.Now()}

	categories := s.selectCategories()
	refs := s.deps.Catalog.Keywords(categories)
	if len(refs) == 0 {
		span.RecordError(ErrNoKeywords)
		return result, ErrNoKeywords
	}
	result.Categories = categories
	log.Printf("Scan cycle started: %d keywords across %v", len(refs), categories)

	byCategory := make(map[string][]domain.Finding, len(categories))
	attempted := make(map[string]bool, len(categories))
	var cycleErr error
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			cycleErr = err
			break
		}

		attempted[ref.Category] = true
		f, err := s.scanKeyword(ctx, ref, &result)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				cycleErr = ctxErr
				break
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ref.Keyword, err))
			log.Printf("skipping %q: %v", ref.Keyword, err)
			continue
		}
		if f == nil {
			result.Skipped++
			continue
		}

		result.Scanned++
		byCategory[ref.Category] = append(byCategory[ref.Category], *f)
		if f.MeetsThreshold {
			result.Profitable++
		}
		if s.cfg.IncludeAll || f.MeetsThreshold {
			result.Findings = append(result.Findings, *f)
		}
		s.maybeAlert(ctx, *f, &result)
	}

	for _, cat := range categories {
		findings := byCategory[cat]
		if attempted[cat] {
			s.deps.Tracker.Update(cat, findings)
		} else {
			// cancelled before any of its keywords ran
			s.deps.Tracker.Seed([]string{cat})
		}
		b := domain.CategoryBreakdown{Category: cat, Total: len(findings)}
		for _, f := range findings {
			if f.MeetsThreshold {
				b.Profitable++
			}
		}
		result.CategoryBreakdown = append(result.CategoryBreakdown, b)
	}
	result.RateLimit = s.deps.Limiter.Stats()

	persistCtx := context.WithoutCancel(ctx)
	s.persist(persistCtx, &result)
	result.FinishedAt = s.deps.Clock.Now()

	if s.deps.Runs != nil {
		id, err := s.deps.Runs.SaveRun(persistCtx, &result)
		if err != nil {
			log.Printf("failed to save scan run: %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("save run: %v", err))
		} else {
			result.ID = id
		}
	}

	span.SetAttributes(
		attribute.Int("scan.keywords", len(refs)),
		attribute.Int("scan.scanned", result.Scanned),
		attribute.Int("scan.profitable", result.Profitable),
		attribute.Int("scan.remote_calls", result.RemoteCalls),
		attribute.Int("scan.cache_hits", result.CacheHits),
	)
	if cycleErr != nil {
		span.RecordError(cycleErr)
		log.Printf("Scan cycle cancelled after %d keywords: %v", result.Scanned+result.Skipped, cycleErr)
	} else {
		log.Printf("Scan cycle finished: %d scanned, %d profitable, %d skipped, %d API calls, %d cache hits",
			result.Scanned, result.Profitable, result.Skipped, result.RemoteCalls, result.CacheHits)
	}

	s.lastMu.Lock()
	last := result
	s.last = &last
	s.lastMu.Unlock()

	if s.deps.Observer != nil {
		s.deps.Observer.ObserveCycle(result, cycleErr)
	}
	return result, cycleErr
}

func (s *Scanner) selectCategories() []string {
	if s.cfg.CategoryScan {
		return s.selector.Select(s.cfg.MaxCategories)
	}
	if len(s.cfg.StaticCategories) > 0 {
		return append([]string(nil), s.cfg.StaticCategories...)
	}
	return s.deps.Catalog.Names()
}

// scanKeyword prices one keyword. It returns nil, nil when the marketplace
// has no data for it.
func (s *Scanner) scanKeyword(ctx context.Context, ref domain.KeywordRef, result *domain.ScanResult) (*domain.Finding, error) {
	summary, hit := s.deps.Cache.Get(ref.Keyword)
	if hit {
		result.CacheHits++
	} else {
		if err := s.deps.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		result.RemoteCalls++

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
		fetched, err := s.deps.Lookup.FindCompleted(callCtx, ref.Keyword)
		cancel()
		if err != nil {
			return nil, err
		}
		if fetched == nil || fetched.AvgPrice <= 0 {
			log.Printf("no sold listings for %q", ref.Keyword)
			return nil, nil
		}
		s.deps.Cache.Set(ref.Keyword, *fetched)
		summary = *fetched
	}

	now := s.deps.Clock.Now()
	buy := s.deps.Costs.Estimate(ref.Keyword)
	profit, margin := Profitability(summary.AvgPrice, buy)

	f := domain.Finding{
		Keyword:     ref.Keyword,
		Name:        domain.ProductName(ref.Keyword),
		Category:    ref.Category,
		BuyPrice:    buy,
		SellPrice:   summary.AvgPrice,
		Profit:      profit,
		Margin:      margin,
		Competition: provider.CompetitionFor(summary.SoldCount),
		SoldCount:   summary.SoldCount,
		FromCache:   hit,
		Timestamp:   now,
	}
	f.MeetsThreshold = s.cfg.Threshold.Meets(f)

	if s.cfg.PriceHistory {
		s.deps.History.Record(ref.Keyword, domain.HistoryPoint{
			AvgPrice:   summary.AvgPrice,
			MinPrice:   summary.MinPrice,
			MaxPrice:   summary.MaxPrice,
			Profit:     profit,
			Margin:     margin,
			SoldCount:  summary.SoldCount,
			RecordedAt: now,
		})
		trend := history.Summarize(s.deps.History.Points(ref.Keyword, s.cfg.HistoryWindowDays))
		f.PriceHistory = &trend
	}

	if s.cfg.Enrichment {
		f.TopSellers = summary.TopSellers
		f.SearchURL = provider.SearchURL(ref.Keyword)
		f.Suppliers = provider.SupplierLinks(ref.Keyword, buy)
		if s.deps.Demand != nil {
			d := s.deps.Demand.Estimate(ref.Keyword)
			f.Demand = &d
		}
	}

	log.Printf("%q: $%.2f profit (%.1f%%), competition %s", ref.Keyword, profit, margin, f.Competition)
	return &f, nil
}

func (s *Scanner) maybeAlert(ctx context.Context, f domain.Finding, result *domain.ScanResult) {
	if s.deps.Alerts == nil || !s.cfg.Alert.Matches(f) {
		return
	}
	if err := s.deps.Alerts.Send(ctx, f); err != nil {
		log.Printf("alert for %q failed: %v", f.Keyword, err)
		result.Errors = append(result.Errors, fmt.Sprintf("alert %s: %v", f.Keyword, err))
		return
	}
	result.AlertsSent++
}

func (s *Scanner) persist(ctx context.Context, result *domain.ScanResult) {
	if s.deps.Snapshots == nil {
		return
	}
	type saver interface {
		Save(ctx context.Context, store snapshot.Store) error
	}
	stores := []struct {
		name string
		s    saver
	}{
		{"price cache", s.deps.Cache},
		{"price history", s.deps.History},
		{"category performance", s.deps.Tracker},
	}
	for _, st := range stores {
		if err := st.s.Save(ctx, s.deps.Snapshots); err != nil {
			log.Printf("failed to save %s: %v", st.name, err)
			result.Errors = append(result.Errors, fmt.Sprintf("save %s: %v", st.name, err))
		}
	}
}
