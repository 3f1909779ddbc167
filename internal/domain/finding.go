package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type Competition string

const (
	CompetitionLow    Competition = "Low"
	CompetitionMedium Competition = "Medium"
	CompetitionHigh   Competition = "High"
)

// SupplierOffer is an estimated buy price at one supplier.
type SupplierOffer struct {
	Source         string  `json:"source"`
	URL            string  `json:"url"`
	EstimatedPrice float64 `json:"estimated_price"`
}

// Demand is the trend and social-proof estimate for a keyword.
type Demand struct {
	TrendScore     int     `json:"trend_score"`
	IsViral        bool    `json:"is_viral"`
	TrendStatus    string  `json:"trend_status"`
	DemandScore    int     `json:"demand_score"`
	GoogleTrends   int     `json:"google_trends"`
	RedditMentions int     `json:"reddit_mentions"`
	InstagramPosts int     `json:"instagram_posts"`
	AmazonReviews  int     `json:"amazon_reviews"`
	AmazonRating   float64 `json:"amazon_rating"`
	Validation     string  `json:"validation"`
}

// PriceTrend summarizes the recent price history of a keyword.
type PriceTrend struct {
	DataPoints int            `json:"data_points"`
	Trend      string         `json:"trend"`
	Points     []HistoryPoint `json:"points,omitempty"`
}

// Finding is the computed profitability of one keyword in one cycle.
type Finding struct {
	Keyword        string      `json:"keyword"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	BuyPrice       float64     `json:"buy_price"`
	SellPrice      float64     `json:"sell_price"`
	Profit         float64     `json:"profit"`
	Margin         float64     `json:"margin"`
	Competition    Competition `json:"competition"`
	SoldCount      int         `json:"sold_count"`
	MeetsThreshold bool        `json:"meets_threshold"`
	FromCache      bool        `json:"from_cache"`
	Timestamp      time.Time   `json:"timestamp"`

	TopSellers   []Seller        `json:"top_sellers,omitempty"`
	SearchURL    string          `json:"search_url,omitempty"`
	Suppliers    []SupplierOffer `json:"suppliers,omitempty"`
	Demand       *Demand         `json:"demand,omitempty"`
	PriceHistory *PriceTrend     `json:"price_history,omitempty"`
}

// CategoryBreakdown counts findings per category for one cycle.
type CategoryBreakdown struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	Profitable int    `json:"profitable"`
}

// RateLimitStats is a read-only view of outbound call usage.
type RateLimitStats struct {
	Hourly          int `json:"hourly"`
	Daily           int `json:"daily"`
	HourlyLimit     int `json:"hourly_limit"`
	DailyLimit      int `json:"daily_limit"`
	RemainingHourly int `json:"remaining_hourly"`
}

// ScanResult is the aggregated output of one scan cycle.
type ScanResult struct {
	ID                int64               `json:"id,omitempty"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at"`
	Categories        []string            `json:"categories"`
	Findings          []Finding           `json:"findings"`
	Scanned           int                 `json:"scanned"`
	Profitable        int                 `json:"profitable"`
	Skipped           int                 `json:"skipped"`
	CacheHits         int                 `json:"cache_hits"`
	RemoteCalls       int                 `json:"remote_calls"`
	AlertsSent        int                 `json:"alerts_sent"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	RateLimit         RateLimitStats      `json:"rate_limit"`
	Errors            []string            `json:"errors,omitempty"`
}

// Duration is the wall time the cycle took.
func (r ScanResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ProductName title-cases a keyword for display.
func ProductName(keyword string) string {
	words := strings.Split(keyword, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
