// Package alert delivers notifications for high-value findings.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log"

	"product-scout/internal/domain"
)

const (
	DefaultMinProfit = 20.0
	DefaultMinMargin = 40.0
)

// Sink delivers one finding. Delivery is at most once; callers log failures
// and move on.
type Sink interface {
	Name() string
	Send(ctx context.Context, f domain.Finding) error
}

// Policy decides which findings are worth an alert.
type Policy struct {
	MinProfit float64
	MinMargin float64
}

func DefaultPolicy() Policy {
	return Policy{MinProfit: DefaultMinProfit, MinMargin: DefaultMinMargin}
}

func (p Policy) Matches(f domain.Finding) bool {
	return f.Profit >= p.MinProfit && f.Margin >= p.MinMargin
}

// LogSink writes alerts to the process log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, f domain.Finding) error {
	log.Printf("ALERT %s", Subject(f))
	return nil
}

// Multi fans a finding out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, f domain.Finding) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, f); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func Subject(f domain.Finding) string {
	return fmt.Sprintf("Hot product: %s (+$%.2f profit, %.1f%% margin)", f.Name, f.Profit, f.Margin)
}

func plainText(f domain.Finding) string {
	return fmt.Sprintf(
		"%s\nCategory: %s\nBuy: $%.2f\nSell: $%.2f\nProfit: $%.2f\nMargin: %.1f%%\nCompetition: %s\nSold: %d",
		f.Name, f.Category, f.BuyPrice, f.SellPrice, f.Profit, f.Margin, f.Competition, f.SoldCount,
	)
}
