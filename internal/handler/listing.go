package handler

import (
	"net/http"
	"strings"

	"product-scout/internal/listing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type generateListingRequest struct {
	Keyword     string              `json:"keyword"`
	ProductData listing.ProductData `json:"productData"`
}

// GenerateListing godoc
// @Summary      Generate a marketplace listing
// @Description  Drafts a title, description and keywords for a product, using the LLM when configured and a template otherwise
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        request  body      generateListingRequest  true  "Keyword and market data"
// @Success      200      {object}  listing.Listing
// @Failure      400      {object}  map[string]string
// @Router       /api/ai/generate-listing [post]
func (h *Handler) GenerateListing(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.generate-listing")
	defer span.End()

	var req generateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}
	if req.ProductData.AvgPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productData.avg_price must be positive"})
		return
	}
	span.SetAttributes(attribute.String("keyword", req.Keyword))

	c.JSON(http.StatusOK, h.listings.Generate(ctx, req.Keyword, req.ProductData))
}
