package clock

import (
	"context"
	"testing"
	"time"
)

func TestRealSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := (Real{}).Sleep(ctx, time.Second); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("sleep should stop after context cancellation")
	}
}

func TestRealSleepZeroDuration(t *testing.T) {
	if err := (Real{}).Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	if err := c.Sleep(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Advance(time.Minute)

	if got := c.Now(); !got.Equal(start.Add(time.Minute + 3*time.Second)) {
		t.Fatalf("unexpected now: %v", got)
	}
	if slept := c.Slept(); len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("unexpected sleeps: %v", slept)
	}
}

func TestFakeSleepCancelled(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sleep(ctx, time.Hour); err == nil {
		t.Fatal("expected cancellation error")
	}
	if !c.Now().Equal(time.Unix(0, 0)) {
		t.Fatal("cancelled sleep must not advance the clock")
	}
}
