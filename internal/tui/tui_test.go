package tui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/scanner"

	tea "github.com/charmbracelet/bubbletea"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type stubSource struct {
	status scanner.Status
	ranks  []domain.CategoryRank
	err    error
	calls  int
}

func (s *stubSource) Status(context.Context) (scanner.Status, error) {
	s.calls++
	return s.status, s.err
}

func (s *stubSource) Categories(context.Context) ([]domain.CategoryRank, error) {
	return s.ranks, nil
}

func TestAPIClient(t *testing.T) {
	c := NewAPIClient("http://scout.local/")
	c.client.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/":
			return jsonResponse(http.StatusOK, `{"running":true,"cache_entries":3,"rate_limit":{"hourly":2,"hourly_limit":80}}`), nil
		case "/api/categories/performance":
			return jsonResponse(http.StatusOK, `{"ranking":[{"category":"Pet Supplies","score":71}],"categories":{}}`), nil
		}
		return jsonResponse(http.StatusNotFound, `{}`), nil
	})

	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.Running || st.CacheEntries != 3 || st.RateLimit.Hourly != 2 {
		t.Fatalf("unexpected status: %+v", st)
	}

	ranks, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(ranks) != 1 || ranks[0].Category != "Pet Supplies" || ranks[0].Score != 71 {
		t.Fatalf("unexpected ranks: %+v", ranks)
	}
}

func TestAPIClientHTTPError(t *testing.T) {
	c := NewAPIClient("")
	c.client.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
	})

	_, err := c.Status(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDashboardLoadsAndRenders(t *testing.T) {
	src := &stubSource{
		status: scanner.Status{
			CacheEntries: 12,
			RateLimit:    domain.RateLimitStats{Hourly: 5, HourlyLimit: 80, Daily: 40, DailyLimit: 4000},
			Features:     scanner.Features{CategoryScan: true, Threshold: scanner.PolicyGated, MinProfit: 5, MinMargin: 20},
			LastRun: &scanner.RunSummary{
				StartedAt:  time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
				Duration:   2 * time.Minute,
				Categories: []string{"Pet Supplies"},
				Scanned:    5,
				Profitable: 2,
			},
		},
		ranks: []domain.CategoryRank{{Category: "Pet Supplies", Score: 71, SuccessRate: 40, AvgProfit: 6.5}},
	}
	d := NewDashboard(src, "alice", time.Second)

	if !strings.Contains(d.View(), "loading") {
		t.Fatalf("expected loading view, got %q", d.View())
	}

	msg := d.fetch()()
	_, cmd := d.Update(msg)
	if cmd == nil {
		t.Fatal("expected a follow-up tick after a snapshot")
	}

	view := d.View()
	for _, want := range []string{"alice", "5/80 this hour", "12 entries", "adaptive categories", "scanned      5  profitable 2", "Pet Supplies", "     40%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDashboardKeepsLastGoodSnapshotOnError(t *testing.T) {
	src := &stubSource{status: scanner.Status{CacheEntries: 7}}
	d := NewDashboard(src, "", time.Second)
	d.Update(d.fetch()())

	src.err = errors.New("connection refused")
	d.Update(d.fetch()())

	view := d.View()
	if !strings.Contains(view, "7 entries") || !strings.Contains(view, "refresh failed: connection refused") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestDashboardKeys(t *testing.T) {
	src := &stubSource{}
	d := NewDashboard(src, "", time.Second)

	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	cmd()
	if src.calls != 1 {
		t.Fatalf("expected one fetch, got %d", src.calls)
	}

	_, cmd = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit message")
	}
}

func TestCategoryTableTruncates(t *testing.T) {
	ranks := make([]domain.CategoryRank, 10)
	for i := range ranks {
		ranks[i] = domain.CategoryRank{Category: "Category", Score: 50}
	}
	got := categoryTable(ranks, 3)
	if lines := strings.Count(got, "\n") + 1; lines != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", lines)
	}
	if got := truncate("Home & Garden Outdoor Living", 10); got != "Home & Ga…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
