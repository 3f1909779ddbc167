package handler

import (
	"net/http"
	"strings"

	"product-scout/internal/history"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetHistory godoc
// @Summary      Price history for a keyword
// @Description  Returns the recorded average prices for a keyword within the window and the derived trend
// @Tags         history
// @Produce      json
// @Param        keyword  path   string  true   "Search keyword, exactly as scanned"
// @Param        days     query  int     false  "Window in days (default 30, max 90)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/history/{keyword} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	keyword := c.Param("keyword")
	if strings.TrimSpace(keyword) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}
	days := queryInt(c, "days", history.DefaultWindowDays, 90)
	span.SetAttributes(attribute.String("keyword", keyword), attribute.Int("days", days))

	trend := h.scanner.History(keyword, days)
	c.JSON(http.StatusOK, gin.H{
		"keyword":     keyword,
		"days":        days,
		"data_points": trend.DataPoints,
		"trend":       trend.Trend,
		"points":      trend.Points,
	})
}

// CategoryPerformance godoc
// @Summary      Category scores
// @Description  Returns every tracked category ranked by score, with its raw statistics
// @Tags         categories
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/categories/performance [get]
func (h *Handler) CategoryPerformance(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.category-performance")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"ranking":    h.scanner.TopCategories(-1),
		"categories": h.scanner.CategoryStats(),
	})
}
