package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/history"
	"product-scout/internal/scanner"

	tele "gopkg.in/telebot.v3"
)

type ScanService interface {
	RunCycle(ctx context.Context) (domain.ScanResult, error)
	TopCategories(n int) []domain.CategoryRank
	History(keyword string, days int) domain.PriceTrend
}

var newBot = tele.NewBot

// NewTelegramBot returns nil when no token is configured or the bot cannot
// be created. The bot is also the alert sender, so it exists before the
// scanner does.
func NewTelegramBot(token string) *tele.Bot {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := newBot(pref)
	if err != nil {
		log.Printf("failed to create Telegram bot: %v", err)
		return nil
	}
	return b
}

// StartTelegramBot registers the chat commands and starts polling.
func StartTelegramBot(b *tele.Bot, svc ScanService) {
	if b == nil {
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/top", func(c tele.Context) error {
		return c.Send(topReply(svc.TopCategories(5)))
	})

	b.Handle("/history", func(c tele.Context) error {
		keyword := strings.TrimSpace(strings.Join(c.Args(), " "))
		if keyword == "" {
			return c.Send("Usage: /history phone case")
		}
		return c.Send(historyReply(keyword, svc.History(keyword, history.DefaultWindowDays)))
	})

	b.Handle("/scan", func(c tele.Context) error {
		if err := c.Send("Scanning..."); err != nil {
			return err
		}
		result, err := svc.RunCycle(context.Background())
		return c.Send(scanReply(result, err))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func topReply(ranks []domain.CategoryRank) string {
	if len(ranks) == 0 {
		return "No categories tracked yet."
	}
	var sb strings.Builder
	sb.WriteString("Top categories\n")
	for i, r := range ranks {
		fmt.Fprintf(&sb, "%d. %s  score %d  success %.0f%%  avg profit $%.2f\n",
			i+1, r.Category, r.Score, r.SuccessRate, r.AvgProfit)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func historyReply(keyword string, trend domain.PriceTrend) string {
	if len(trend.Points) == 0 {
		return fmt.Sprintf("No price history for %q.", keyword)
	}
	last := trend.Points[len(trend.Points)-1]
	return fmt.Sprintf("%s\nTrend: %s\nData points: %d\nLatest avg: $%.2f (%s)",
		keyword, trend.Trend, trend.DataPoints, last.AvgPrice, last.RecordedAt.Format("2006-01-02"))
}

func scanReply(result domain.ScanResult, err error) string {
	if errors.Is(err, scanner.ErrCycleInProgress) {
		return "A scan is already running."
	}
	if err != nil {
		return fmt.Sprintf("Scan failed: %v", err)
	}
	msg := fmt.Sprintf("Scan finished in %s\nCategories: %s\nScanned: %d  Profitable: %d  Skipped: %d",
		result.Duration().Round(time.Second), strings.Join(result.Categories, ", "),
		result.Scanned, result.Profitable, result.Skipped)
	for i, f := range result.Findings {
		if i == 3 {
			break
		}
		msg += fmt.Sprintf("\n- %s: $%.2f profit, %.1f%% margin", f.Name, f.Profit, f.Margin)
	}
	return msg
}
