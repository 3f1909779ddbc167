// Package ratelimit throttles outbound marketplace calls.
//
// Limiter enforces a minimum spacing between granted calls and a rolling
// hourly quota. It never rejects a call; Acquire only delays the caller
// until the call is safe to issue.
package ratelimit

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"product-scout/internal/clock"
	"product-scout/internal/domain"
)

const (
	DefaultDelay   = 3 * time.Second
	DefaultPerHour = 80
	DefaultPerDay  = 4000

	hourWindow = time.Hour
	dayWindow  = 24 * time.Hour
)

type Config struct {
	// Delay is the minimum spacing between two granted calls.
	Delay time.Duration
	// PerHour is the maximum number of grants in any trailing hour.
	PerHour int
	// PerDay is reported by Stats only; it is not enforced.
	PerDay int
}

type Limiter struct {
	clock clock.Clock
	cfg   Config

	// turn admits one Acquire at a time. Blocked channel senders are
	// woken in arrival order.
	turn chan struct{}

	mu    sync.Mutex
	calls []time.Time
	last  time.Time
}

func New(clk clock.Clock, cfg Config) *Limiter {
	if clk == nil {
		clk = clock.Real{}
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.PerHour <= 0 {
		cfg.PerHour = DefaultPerHour
	}
	if cfg.PerDay <= 0 {
		cfg.PerDay = DefaultPerDay
	}
	return &Limiter{
		clock: clk,
		cfg:   cfg,
		turn:  make(chan struct{}, 1),
	}
}

// Acquire blocks until the next remote call may be issued, or until ctx is
// done. The grant is recorded only after all waits resolve.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.turn }()

	for {
		now := l.clock.Now()
		wait, quota := l.nextWait(now)
		if wait <= 0 {
			l.record(now)
			return nil
		}
		if quota {
			log.Printf("rate limiter: hourly limit of %d reached, waiting %s", l.cfg.PerHour, wait.Round(time.Second))
		}
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// nextWait reports how long the caller must still wait at now, and whether
// the wait is caused by the hourly quota.
func (l *Limiter) nextWait(now time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	if !l.last.IsZero() {
		if elapsed := now.Sub(l.last); elapsed < l.cfg.Delay {
			return l.cfg.Delay - elapsed, false
		}
	}

	// The window is closed at both ends, so the oldest grant still counts
	// exactly one hour later and the wait runs one tick past it.
	hourly := l.since(now.Add(-hourWindow))
	if len(hourly) >= l.cfg.PerHour {
		return hourly[0].Add(hourWindow).Sub(now) + time.Nanosecond, true
	}
	return 0, false
}

func (l *Limiter) record(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, now)
	l.last = now
}

// prune drops grants that no longer count toward any window. Grants are
// kept for a day so Stats can report the daily figure.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-dayWindow)
	i := sort.Search(len(l.calls), func(i int) bool { return l.calls[i].After(cutoff) })
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}

// since returns the grants at or after cutoff.
func (l *Limiter) since(cutoff time.Time) []time.Time {
	i := sort.Search(len(l.calls), func(i int) bool { return !l.calls[i].Before(cutoff) })
	return l.calls[i:]
}

// Stats returns usage counts without side effects.
func (l *Limiter) Stats() domain.RateLimitStats {
	now := l.clock.Now()

	l.mu.Lock()
	hourly := len(l.since(now.Add(-hourWindow)))
	daily := len(l.since(now.Add(-dayWindow)))
	l.mu.Unlock()

	remaining := l.cfg.PerHour - hourly
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitStats{
		Hourly:          hourly,
		Daily:           daily,
		HourlyLimit:     l.cfg.PerHour,
		DailyLimit:      l.cfg.PerDay,
		RemainingHourly: remaining,
	}
}

func (l *Limiter) Config() Config {
	return l.cfg
}
