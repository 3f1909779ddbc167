package history

import (
	"context"
	"testing"
	"time"

	"product-scout/internal/clock"
	"product-scout/internal/domain"
	"product-scout/internal/snapshot"
)

var epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func point(avg float64, at time.Time) domain.HistoryPoint {
	return domain.HistoryPoint{AvgPrice: avg, RecordedAt: at}
}

func TestRecordThenQuery(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewStore(clk, 0)

	s.Record("phone case", point(20, clk.Now()))

	got := s.Points("phone case", 90)
	if len(got) != 1 || got[0].AvgPrice != 20 {
		t.Fatalf("expected recorded point, got %+v", got)
	}
}

func TestRecordPrunesAgedPoints(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewStore(clk, 0)

	s.Record("yoga mat", point(10, clk.Now()))
	clk.Advance(91 * 24 * time.Hour)
	s.Record("yoga mat", point(12, clk.Now()))

	got := s.Points("yoga mat", 365)
	if len(got) != 1 {
		t.Fatalf("expected aged point to be pruned, got %d points", len(got))
	}
	if got[0].AvgPrice != 12 {
		t.Fatalf("expected newest point to survive, got %+v", got[0])
	}
}

func TestRecordPrunesOnlyThatKey(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewStore(clk, 0)

	s.Record("a", point(1, clk.Now()))
	s.Record("b", point(2, clk.Now()))
	clk.Advance(100 * 24 * time.Hour)
	s.Record("a", point(3, clk.Now()))

	if n := len(s.Points("b", 365)); n != 1 {
		t.Fatalf("pruning must not touch other keys, b has %d points", n)
	}
}

func TestQueryWindowAndOrder(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewStore(clk, 0)

	for i := 0; i < 5; i++ {
		s.Record("lamp", point(float64(i), clk.Now()))
		clk.Advance(10 * 24 * time.Hour)
	}

	// now is epoch+50d; a 30 day window keeps points at 20d, 30d and 40d
	got := s.Points("lamp", 30)
	if len(got) != 3 {
		t.Fatalf("expected 3 points in window, got %d", len(got))
	}
	for i, p := range got {
		if p.AvgPrice != float64(i+2) {
			t.Fatalf("unexpected order at %d: %+v", i, got)
		}
	}
}

func TestQueryIsRestartableAndStopsEarly(t *testing.T) {
	clk := clock.NewFake(epoch)
	s := NewStore(clk, 0)
	s.Record("mug", point(1, clk.Now()))
	s.Record("mug", point(2, clk.Now()))

	seq := s.Query("mug", 30)
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
		break
	}
	if first != 2 || second != 1 {
		t.Fatalf("expected 2 then 1 yielded, got %d and %d", first, second)
	}
}

func TestQueryUnknownKey(t *testing.T) {
	s := NewStore(clock.NewFake(epoch), 0)
	if got := s.Points("missing", 30); len(got) != 0 {
		t.Fatalf("expected no points, got %+v", got)
	}
}

func TestTrend(t *testing.T) {
	now := epoch
	if got := Trend(nil); got != domain.TrendInsufficientData {
		t.Fatalf("expected insufficient data, got %s", got)
	}
	if got := Trend([]domain.HistoryPoint{point(1, now)}); got != domain.TrendInsufficientData {
		t.Fatalf("expected insufficient data, got %s", got)
	}
	if got := Trend([]domain.HistoryPoint{point(1, now), point(5, now), point(2, now)}); got != domain.TrendIncreasing {
		t.Fatalf("expected increasing, got %s", got)
	}
	if got := Trend([]domain.HistoryPoint{point(3, now), point(3, now)}); got != domain.TrendDecreasing {
		t.Fatalf("equal endpoints should read as decreasing, got %s", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clk := clock.NewFake(epoch)
	store := snapshot.NewFileStore(t.TempDir())
	ctx := context.Background()

	s := NewStore(clk, 0)
	s.Record("desk lamp", point(30, clk.Now()))
	if err := s.Save(ctx, store); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := NewStore(clk, 0)
	if err := restored.Load(ctx, store); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := restored.Points("desk lamp", 30)
	if len(got) != 1 || !got[0].RecordedAt.Equal(epoch) {
		t.Fatalf("unexpected restored points: %+v", got)
	}
	if keys := restored.Keys(); len(keys) != 1 || keys[0] != "desk lamp" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	s := NewStore(clock.NewFake(epoch), 0)
	if err := s.Load(context.Background(), snapshot.NewFileStore(t.TempDir())); err != nil {
		t.Fatalf("missing snapshot should not be an error: %v", err)
	}
}
