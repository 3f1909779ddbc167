package domain

import "time"

// Seller is one of the top sellers observed for a sold-listing search.
type Seller struct {
	Username        string  `json:"username"`
	FeedbackScore   int     `json:"feedback_score"`
	PositivePercent float64 `json:"positive_percent"`
	ProfileURL      string  `json:"profile_url"`
	ItemURL         string  `json:"item_url"`
	ItemTitle       string  `json:"item_title"`
	ItemPrice       float64 `json:"item_price"`
}

// PriceSummary is the marketplace view of a keyword: prices of recently
// sold fixed-price listings.
type PriceSummary struct {
	Keyword    string   `json:"keyword"`
	AvgPrice   float64  `json:"avg_price"`
	MinPrice   float64  `json:"min_price"`
	MaxPrice   float64  `json:"max_price"`
	SoldCount  int      `json:"sold_count"`
	TopSellers []Seller `json:"top_sellers,omitempty"`
}

// CacheEntry is a cached price summary and the instant it was stored.
type CacheEntry struct {
	Value    PriceSummary `json:"value"`
	StoredAt time.Time    `json:"stored_at"`
}

// HistoryPoint is one recorded scan of a keyword. Never mutated after creation.
type HistoryPoint struct {
	AvgPrice   float64   `json:"avg_price"`
	MinPrice   float64   `json:"min_price"`
	MaxPrice   float64   `json:"max_price"`
	Profit     float64   `json:"profit"`
	Margin     float64   `json:"margin"`
	SoldCount  int       `json:"sold_count"`
	RecordedAt time.Time `json:"recorded_at"`
}

const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendInsufficientData = "insufficient_data"
)

// DefaultCategoryScore is the neutral prior for categories never updated.
const DefaultCategoryScore = 50

// CategoryStats is the cumulative scan performance of one category.
type CategoryStats struct {
	TotalScanned    int        `json:"total_scanned"`
	ProfitableFound int        `json:"profitable_found"`
	AvgProfit       float64    `json:"avg_profit"`
	AvgMargin       float64    `json:"avg_margin"`
	SuccessRate     float64    `json:"success_rate"`
	LastScannedAt   *time.Time `json:"last_scanned_at,omitempty"`
	Score           int        `json:"score"`
}

// NewCategoryStats returns stats for a category that has never been scanned.
func NewCategoryStats() *CategoryStats {
	return &CategoryStats{Score: DefaultCategoryScore}
}

// CategoryRank is a category and its current score, used for ranking output.
type CategoryRank struct {
	Category    string  `json:"category"`
	Score       int     `json:"score"`
	SuccessRate float64 `json:"success_rate"`
	AvgProfit   float64 `json:"avg_profit"`
}

// KeywordRef is one keyword to scan and the category it belongs to.
type KeywordRef struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}
