// Package metrics exposes scanner activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"product-scout/internal/domain"
)

// Source is read on every scrape.
type Source interface {
	RateLimitStats() domain.RateLimitStats
	CacheEntries() int
	TopCategories(n int) []domain.CategoryRank
}

var (
	hourlyCallsDesc = prometheus.NewDesc(
		"scout_api_calls_last_hour",
		"Remote API calls granted in the trailing hour",
		nil, nil,
	)
	dailyCallsDesc = prometheus.NewDesc(
		"scout_api_calls_last_day",
		"Remote API calls granted in the trailing 24 hours",
		nil, nil,
	)
	remainingDesc = prometheus.NewDesc(
		"scout_api_calls_remaining_hourly",
		"Remaining hourly API call quota",
		nil, nil,
	)
	cacheEntriesDesc = prometheus.NewDesc(
		"scout_cache_entries",
		"Price summaries held in the cache, including expired entries not yet evicted",
		nil, nil,
	)
	categoryScoreDesc = prometheus.NewDesc(
		"scout_category_score",
		"Current performance score per category",
		[]string{"category"}, nil,
	)
)

// StateCollector reports scanner state at scrape time.
type StateCollector struct {
	src Source
}

func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- hourlyCallsDesc
	ch <- dailyCallsDesc
	ch <- remainingDesc
	ch <- cacheEntriesDesc
	ch <- categoryScoreDesc
}

func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.RateLimitStats()
	ch <- prometheus.MustNewConstMetric(hourlyCallsDesc, prometheus.GaugeValue, float64(stats.Hourly))
	ch <- prometheus.MustNewConstMetric(dailyCallsDesc, prometheus.GaugeValue, float64(stats.Daily))
	ch <- prometheus.MustNewConstMetric(remainingDesc, prometheus.GaugeValue, float64(stats.RemainingHourly))
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(c.src.CacheEntries()))
	for _, r := range c.src.TopCategories(-1) {
		ch <- prometheus.MustNewConstMetric(categoryScoreDesc, prometheus.GaugeValue, float64(r.Score), r.Category)
	}
}

// Metrics holds the scanner counters and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	cycles         *prometheus.CounterVec
	keywords       *prometheus.CounterVec
	alerts         prometheus.Counter
	cycleDuration  prometheus.Histogram
	triggerDenials *prometheus.CounterVec
}

func New(src Source) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_scan_cycles_total",
			Help: "Scan cycles by outcome",
		}, []string{"outcome"}),
		keywords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_keywords_total",
			Help: "Keywords processed by outcome",
		}, []string{"outcome"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scout_alerts_sent_total",
			Help: "Alerts delivered for high-value findings",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scout_scan_cycle_duration_seconds",
			Help:    "Wall time of scan cycles",
			Buckets: []float64{1, 10, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		triggerDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_trigger_denials_total",
			Help: "On-demand scan triggers refused, by reason",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.cycles, m.keywords, m.alerts, m.cycleDuration, m.triggerDenials)
	if src != nil {
		m.registry.MustRegister(&StateCollector{src: src})
	}
	return m
}

// ObserveCycle records one finished cycle.
func (m *Metrics) ObserveCycle(result domain.ScanResult, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.keywords.WithLabelValues("cache_hit").Add(float64(result.CacheHits))
	m.keywords.WithLabelValues("remote_call").Add(float64(result.RemoteCalls))
	m.keywords.WithLabelValues("skipped").Add(float64(result.Skipped))
	m.keywords.WithLabelValues("profitable").Add(float64(result.Profitable))
	m.alerts.Add(float64(result.AlertsSent))
	if !result.FinishedAt.IsZero() {
		m.cycleDuration.Observe(result.Duration().Seconds())
	}
}

// TriggerDenied counts a refused on-demand trigger.
func (m *Metrics) TriggerDenied(reason string) {
	m.triggerDenials.WithLabelValues(reason).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
