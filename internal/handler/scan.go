package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"product-scout/internal/scanner"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// TriggerScan godoc
// @Summary      Run a scan cycle
// @Description  Runs one scan cycle synchronously and returns its result
// @Tags         scanner
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  domain.ScanResult
// @Failure      409  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/scan [post]
func (h *Handler) TriggerScan(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-scan")
	defer span.End()

	result, err := h.scanner.RunCycle(ctx)
	switch {
	case errors.Is(err, scanner.ErrCycleInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// the client went away; the partial result was still persisted
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "result": result})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.Int("scanned", result.Scanned),
		attribute.Int("profitable", result.Profitable),
	)
	c.JSON(http.StatusOK, result)
}

// RecentScans godoc
// @Summary      Recent scan runs
// @Description  Returns the most recent stored scan runs, newest first
// @Tags         scanner
// @Produce      json
// @Param        limit  query  int  false  "Number of runs (default 10, max 100)"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/scans/recent [get]
func (h *Handler) RecentScans(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan history storage unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.recent-scans")
	defer span.End()

	limit := queryInt(c, "limit", 10, 100)
	runs, err := h.runs.RecentRuns(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// TopFindings godoc
// @Summary      Most profitable stored findings
// @Description  Returns the highest-profit findings recorded within the last N days
// @Tags         scanner
// @Produce      json
// @Param        days   query  int  false  "Look-back window in days (default 7, max 90)"  default(7)
// @Param        limit  query  int  false  "Number of findings (default 20, max 100)"  default(20)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/findings/top [get]
func (h *Handler) TopFindings(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan history storage unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.top-findings")
	defer span.End()

	days := queryInt(c, "days", 7, 90)
	limit := queryInt(c, "limit", 20, 100)
	since := time.Now().AddDate(0, 0, -days)

	findings, err := h.runs.TopFindings(ctx, since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"findings": findings, "days": days})
}

// queryInt reads a positive int query parameter, falling back to def when
// missing, invalid or above max.
func queryInt(c *gin.Context, key string, def, max int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= max {
			return n
		}
	}
	return def
}
