package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"product-scout/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ebayFindingBaseURL = "https://svcs.ebay.com/services/search/FindingService/v1"
	ebayEntriesPerPage = 10
	ebayTopSellers     = 3
)

var ErrMissingAppID = errors.New("ebay app id not configured")

// EbayProvider looks up recently sold fixed-price listings through the
// Finding API findCompletedItems operation.
type EbayProvider struct {
	client  *http.Client
	baseURL string
	appID   string
	tracer  trace.Tracer
}

func NewEbayProvider(appID, baseURL string, timeout time.Duration, tracer trace.Tracer) *EbayProvider {
	if baseURL == "" {
		baseURL = ebayFindingBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EbayProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		appID:   appID,
		tracer:  tracer,
	}
}

func (p *EbayProvider) Configured() bool {
	return p.appID != ""
}

// FindCompleted summarizes sold prices for keyword. It returns nil without
// an error when the search has no priced results.
func (p *EbayProvider) FindCompleted(ctx context.Context, keyword string) (*domain.PriceSummary, error) {
	ctx, span := p.tracer.Start(ctx, "ebay.find-completed")
	defer span.End()
	span.SetAttributes(attribute.String("keyword", keyword))

	if p.appID == "" {
		return nil, ErrMissingAppID
	}

	params := url.Values{}
	params.Set("OPERATION-NAME", "findCompletedItems")
	params.Set("SERVICE-VERSION", "1.0.0")
	params.Set("SECURITY-APPNAME", p.appID)
	params.Set("RESPONSE-DATA-FORMAT", "JSON")
	params.Set("REST-PAYLOAD", "")
	params.Set("keywords", keyword)
	params.Set("itemFilter(0).name", "SoldItemsOnly")
	params.Set("itemFilter(0).value", "true")
	params.Set("itemFilter(1).name", "ListingType")
	params.Set("itemFilter(1).value", "FixedPrice")
	params.Set("sortOrder", "EndTimeSoonest")
	params.Set("paginationInput.entriesPerPage", strconv.Itoa(ebayEntriesPerPage))

	body, err := p.doRequest(ctx, p.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("find completed items for %q: %w", keyword, err)
	}

	var raw findingResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse completed items for %q: %w", keyword, err)
	}
	if msg := raw.errorMessage(); msg != "" {
		return nil, fmt.Errorf("ebay API error for %q: %s", keyword, msg)
	}

	summary := summarize(keyword, raw.items())
	span.SetAttributes(attribute.Bool("has_data", summary != nil))
	return summary, nil
}

func (p *EbayProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "product-scout/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ebay API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

func summarize(keyword string, items []findingItem) *domain.PriceSummary {
	var prices []float64
	for _, item := range items {
		if price, ok := item.price(); ok {
			prices = append(prices, price)
		}
	}
	if len(prices) == 0 {
		return nil
	}

	sum, lo, hi := 0.0, prices[0], prices[0]
	for _, price := range prices {
		sum += price
		lo = min(lo, price)
		hi = max(hi, price)
	}

	summary := &domain.PriceSummary{
		Keyword:   keyword,
		AvgPrice:  sum / float64(len(prices)),
		MinPrice:  lo,
		MaxPrice:  hi,
		SoldCount: len(items),
	}
	for i, item := range items {
		if i == ebayTopSellers {
			break
		}
		summary.TopSellers = append(summary.TopSellers, item.seller())
	}
	return summary
}

type findingError struct {
	Error []struct {
		Message []string `json:"message"`
	} `json:"error"`
}

type findingResponse struct {
	ErrorMessage               []findingError `json:"errorMessage"`
	FindCompletedItemsResponse []struct {
		ErrorMessage []findingError `json:"errorMessage"`
		SearchResult []struct {
			Count string        `json:"@count"`
			Item  []findingItem `json:"item"`
		} `json:"searchResult"`
	} `json:"findCompletedItemsResponse"`
}

func (r findingResponse) errorMessage() string {
	errs := r.ErrorMessage
	if len(errs) == 0 && len(r.FindCompletedItemsResponse) > 0 {
		errs = r.FindCompletedItemsResponse[0].ErrorMessage
	}
	if len(errs) == 0 || len(errs[0].Error) == 0 {
		return ""
	}
	if msg := first(errs[0].Error[0].Message); msg != "" {
		return msg
	}
	return "unknown error"
}

func (r findingResponse) items() []findingItem {
	if len(r.FindCompletedItemsResponse) == 0 {
		return nil
	}
	results := r.FindCompletedItemsResponse[0].SearchResult
	if len(results) == 0 || results[0].Count == "0" {
		return nil
	}
	return results[0].Item
}

type findingItem struct {
	Title       []string `json:"title"`
	ViewItemURL []string `json:"viewItemURL"`
	SellerInfo  []struct {
		SellerUserName          []string `json:"sellerUserName"`
		FeedbackScore           []string `json:"feedbackScore"`
		PositiveFeedbackPercent []string `json:"positiveFeedbackPercent"`
	} `json:"sellerInfo"`
	SellingStatus []struct {
		CurrentPrice []struct {
			Value string `json:"__value__"`
		} `json:"currentPrice"`
	} `json:"sellingStatus"`
}

func (i findingItem) price() (float64, bool) {
	if len(i.SellingStatus) == 0 || len(i.SellingStatus[0].CurrentPrice) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(i.SellingStatus[0].CurrentPrice[0].Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (i findingItem) seller() domain.Seller {
	s := domain.Seller{
		Username:  "Unknown",
		ItemURL:   first(i.ViewItemURL),
		ItemTitle: first(i.Title),
	}
	s.ItemPrice, _ = i.price()
	if len(i.SellerInfo) > 0 {
		info := i.SellerInfo[0]
		if name := first(info.SellerUserName); name != "" {
			s.Username = name
			s.ProfileURL = "https://www.ebay.com/usr/" + url.PathEscape(name)
		}
		s.FeedbackScore, _ = strconv.Atoi(first(info.FeedbackScore))
		s.PositivePercent, _ = strconv.ParseFloat(first(info.PositiveFeedbackPercent), 64)
	}
	return s
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// SearchURL links to the marketplace's sold-listing search for keyword.
func SearchURL(keyword string) string {
	return "https://www.ebay.com/sch/i.html?_nkw=" + url.QueryEscape(keyword) + "&LH_Sold=1&LH_Complete=1"
}
