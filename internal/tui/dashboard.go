// Package tui renders the read-only scanner dashboard served over SSH.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/scanner"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const topCategories = 8

type Source interface {
	Status(ctx context.Context) (scanner.Status, error)
	Categories(ctx context.Context) ([]domain.CategoryRank, error)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).MarginTop(1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type snapshotMsg struct {
	status scanner.Status
	ranks  []domain.CategoryRank
	err    error
	at     time.Time
}

type tickMsg time.Time

// Dashboard polls the source on an interval and renders status, limiter
// usage, the last run and the top categories.
type Dashboard struct {
	src      Source
	user     string
	interval time.Duration
	spin     spinner.Model

	loaded  bool
	status  scanner.Status
	ranks   []domain.CategoryRank
	err     error
	updated time.Time

	width  int
	height int
}

func NewDashboard(src Source, user string, interval time.Duration) *Dashboard {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dashboard{
		src:      src,
		user:     user,
		interval: interval,
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (d *Dashboard) SetSize(width, height int) {
	d.width, d.height = width, height
}

func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spin.Tick, d.fetch())
}

func (d *Dashboard) fetch() tea.Cmd {
	src := d.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := src.Status(ctx)
		if err != nil {
			return snapshotMsg{err: err, at: time.Now()}
		}
		ranks, err := src.Categories(ctx)
		return snapshotMsg{status: st, ranks: ranks, err: err, at: time.Now()}
	}
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return d, tea.Quit
		case "r":
			return d, d.fetch()
		}
	case tea.WindowSizeMsg:
		d.SetSize(msg.Width, msg.Height)
	case snapshotMsg:
		d.err = msg.err
		d.updated = msg.at
		if msg.err == nil {
			d.loaded = true
			d.status = msg.status
			d.ranks = msg.ranks
		}
		return d, tea.Tick(d.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
	case tickMsg:
		return d, d.fetch()
	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spin, cmd = d.spin.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d *Dashboard) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Product Scout"))
	if d.user != "" {
		b.WriteString(dimStyle.Render("  signed in as " + d.user))
	}
	b.WriteString("\n")

	if !d.loaded {
		if d.err != nil {
			b.WriteString(errStyle.Render("error: "+d.err.Error()) + "\n")
		} else {
			b.WriteString(d.spin.View() + " loading...\n")
		}
		b.WriteString(dimStyle.Render("r refresh  q quit"))
		return b.String()
	}

	b.WriteString(sectionStyle.Render("Scanner") + "\n")
	b.WriteString(boxStyle.Render(statusBlock(d.status)) + "\n")

	b.WriteString(sectionStyle.Render("Last run") + "\n")
	b.WriteString(boxStyle.Render(lastRunBlock(d.status.LastRun)) + "\n")

	b.WriteString(sectionStyle.Render("Top categories") + "\n")
	b.WriteString(boxStyle.Render(categoryTable(d.ranks, topCategories)) + "\n")

	if d.err != nil {
		b.WriteString(errStyle.Render("refresh failed: "+d.err.Error()) + "\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("updated %s  r refresh  q quit", d.updated.Format("15:04:05"))))
	return b.String()
}

func statusBlock(st scanner.Status) string {
	state := dimStyle.Render("idle")
	if st.Running {
		state = goodStyle.Render("scanning")
	}
	rl := st.RateLimit
	lines := []string{
		"state        " + state,
		fmt.Sprintf("api calls    %d/%d this hour, %d/%d today", rl.Hourly, rl.HourlyLimit, rl.Daily, rl.DailyLimit),
		fmt.Sprintf("catalog      %d categories, %d keywords", st.Categories, st.Keywords),
		fmt.Sprintf("cache        %d entries", st.CacheEntries),
		fmt.Sprintf("threshold    %s (profit >= $%.2f, margin >= %.0f%%)", st.Features.Threshold, st.Features.MinProfit, st.Features.MinMargin),
		"features     " + features(st.Features),
	}
	return strings.Join(lines, "\n")
}

func features(f scanner.Features) string {
	var on []string
	if f.CategoryScan {
		on = append(on, "adaptive categories")
	}
	if f.PriceHistory {
		on = append(on, "price history")
	}
	if f.Enrichment {
		on = append(on, "enrichment")
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ", ")
}

func lastRunBlock(run *scanner.RunSummary) string {
	if run == nil {
		return dimStyle.Render("no scan yet")
	}
	lines := []string{
		fmt.Sprintf("started      %s (%s)", run.StartedAt.Format("2006-01-02 15:04"), run.Duration.Round(time.Second)),
		"categories   " + strings.Join(run.Categories, ", "),
		fmt.Sprintf("scanned      %d  profitable %d  skipped %d", run.Scanned, run.Profitable, run.Skipped),
		fmt.Sprintf("remote       %d calls, %d cache hits", run.RemoteCalls, run.CacheHits),
	}
	if run.Errors > 0 {
		lines = append(lines, errStyle.Render(fmt.Sprintf("errors       %d", run.Errors)))
	}
	return strings.Join(lines, "\n")
}

func categoryTable(ranks []domain.CategoryRank, n int) string {
	if len(ranks) == 0 {
		return dimStyle.Render("no categories tracked")
	}
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	rows := []string{fmt.Sprintf("%-3s %-24s %5s %8s %10s", "#", "category", "score", "success", "avg profit")}
	for i, r := range ranks {
		rows = append(rows, fmt.Sprintf("%-3d %-24s %5d %7.0f%% %10s",
			i+1, truncate(r.Category, 24), r.Score, r.SuccessRate, fmt.Sprintf("$%.2f", r.AvgProfit)))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
