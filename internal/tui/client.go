package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/scanner"
)

// APIClient reads dashboard data from a running server.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *APIClient) Status(ctx context.Context) (scanner.Status, error) {
	var st scanner.Status
	err := c.getJSON(ctx, "/", &st)
	return st, err
}

func (c *APIClient) Categories(ctx context.Context) ([]domain.CategoryRank, error) {
	var body struct {
		Ranking []domain.CategoryRank `json:"ranking"`
	}
	if err := c.getJSON(ctx, "/api/categories/performance", &body); err != nil {
		return nil, err
	}
	return body.Ranking, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
