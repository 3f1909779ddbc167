package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status godoc
// @Summary      Scanner status
// @Description  Returns whether a cycle is running, the configured features, limiter usage, cache size and the last run
// @Tags         scanner
// @Produce      json
// @Success      200  {object}  scanner.Status
// @Router       / [get]
func (h *Handler) Status(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.status")
	defer span.End()

	c.JSON(http.StatusOK, h.scanner.Status())
}

// RateLimit godoc
// @Summary      Remote API usage
// @Description  Returns calls made in the last hour and day against the configured quotas
// @Tags         scanner
// @Produce      json
// @Success      200  {object}  domain.RateLimitStats
// @Router       /api/ratelimit [get]
func (h *Handler) RateLimit(c *gin.Context) {
	c.JSON(http.StatusOK, h.scanner.RateLimitStats())
}
