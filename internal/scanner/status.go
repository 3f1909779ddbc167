package scanner

import (
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/history"
)

// Status is a point-in-time view of the scanner for status pages.
type Status struct {
	Running      bool                  `json:"running"`
	CacheEntries int                   `json:"cache_entries"`
	Categories   int                   `json:"categories"`
	Keywords     int                   `json:"keywords"`
	RateLimit    domain.RateLimitStats `json:"rate_limit"`
	Features     Features              `json:"features"`
	LastRun      *RunSummary           `json:"last_run,omitempty"`
}

type Features struct {
	PriceHistory bool            `json:"price_history"`
	CategoryScan bool            `json:"category_scan"`
	Enrichment   bool            `json:"enrichment"`
	IncludeAll   bool            `json:"include_all"`
	Threshold    ThresholdPolicy `json:"threshold_policy"`
	MinProfit    float64         `json:"min_profit"`
	MinMargin    float64         `json:"min_margin"`
}

// RunSummary is a finished cycle without its findings.
type RunSummary struct {
	ID          int64         `json:"id,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Categories  []string      `json:"categories"`
	Scanned     int           `json:"scanned"`
	Profitable  int           `json:"profitable"`
	Skipped     int           `json:"skipped"`
	RemoteCalls int           `json:"remote_calls"`
	CacheHits   int           `json:"cache_hits"`
	Errors      int           `json:"errors"`
}

func (s *Scanner) Status() Status {
	st := Status{
		Running:      s.running.Load(),
		CacheEntries: s.deps.Cache.Len(),
		RateLimit:    s.deps.Limiter.Stats(),
		Features: Features{
			PriceHistory: s.cfg.PriceHistory,
			CategoryScan: s.cfg.CategoryScan,
			Enrichment:   s.cfg.Enrichment,
			IncludeAll:   s.cfg.IncludeAll,
			Threshold:    s.cfg.Threshold.Policy,
			MinProfit:    s.cfg.Threshold.MinProfit,
			MinMargin:    s.cfg.Threshold.MinMargin,
		},
	}
	st.Categories, st.Keywords = s.Catalog()
	if last := s.LastResult(); last != nil {
		st.LastRun = &RunSummary{
			ID:          last.ID,
			StartedAt:   last.StartedAt,
			Duration:    last.Duration(),
			Categories:  last.Categories,
			Scanned:     last.Scanned,
			Profitable:  last.Profitable,
			Skipped:     last.Skipped,
			RemoteCalls: last.RemoteCalls,
			CacheHits:   last.CacheHits,
			Errors:      len(last.Errors),
		}
	}
	return st
}

// LastResult returns the most recent finished cycle, or nil before the first.
func (s *Scanner) LastResult() *domain.ScanResult {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *Scanner) Running() bool {
	return s.running.Load()
}

func (s *Scanner) RateLimitStats() domain.RateLimitStats {
	return s.deps.Limiter.Stats()
}

func (s *Scanner) CacheEntries() int {
	return s.deps.Cache.Len()
}

func (s *Scanner) TopCategories(n int) []domain.CategoryRank {
	return s.deps.Tracker.TopCategories(n)
}

func (s *Scanner) CategoryStats() map[string]domain.CategoryStats {
	return s.deps.Tracker.All()
}

func (s *Scanner) Catalog() (categories, keywords int) {
	names := s.deps.Catalog.Names()
	return len(names), len(s.deps.Catalog.Keywords(names))
}

// History returns keyword's points within the last days and their trend.
func (s *Scanner) History(keyword string, days int) domain.PriceTrend {
	if days <= 0 {
		days = s.cfg.HistoryWindowDays
	}
	return history.Summarize(s.deps.History.Points(keyword, days))
}
