package handler

import (
	"context"
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/listing"
	"product-scout/internal/scanner"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// ScanService is the part of the scanner the HTTP API needs.
type ScanService interface {
	RunCycle(ctx context.Context) (domain.ScanResult, error)
	Status() scanner.Status
	RateLimitStats() domain.RateLimitStats
	TopCategories(n int) []domain.CategoryRank
	CategoryStats() map[string]domain.CategoryStats
	History(keyword string, days int) domain.PriceTrend
}

type RunReader interface {
	RecentRuns(ctx context.Context, limit int) ([]domain.ScanResult, error)
	TopFindings(ctx context.Context, since time.Time, limit int) ([]domain.Finding, error)
}

type ListingGenerator interface {
	Generate(ctx context.Context, keyword string, data listing.ProductData) listing.Listing
}

type Handler struct {
	tracer   trace.Tracer
	scanner  ScanService
	runs     RunReader
	listings ListingGenerator
}

func New(tracer trace.Tracer, scanner ScanService, listings ListingGenerator) *Handler {
	return &Handler{
		tracer:   tracer,
		scanner:  scanner,
		listings: listings,
	}
}

// SetRunReader enables the stored-run endpoints.
func (h *Handler) SetRunReader(runs RunReader) {
	h.runs = runs
}

// RegisterRoutes mounts the API. triggerGuards run in front of the scan
// trigger only.
func (h *Handler) RegisterRoutes(r *gin.Engine, triggerGuards ...gin.HandlerFunc) {
	r.GET("/", h.Status)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/scan", append(triggerGuards, h.TriggerScan)...)
	api.GET("/scans/recent", h.RecentScans)
	api.GET("/findings/top", h.TopFindings)
	api.GET("/history/:keyword", h.GetHistory)
	api.GET("/categories/performance", h.CategoryPerformance)
	api.GET("/ratelimit", h.RateLimit)
	api.POST("/ai/generate-listing", h.GenerateListing)
}
