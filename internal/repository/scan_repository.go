package repository

import (
	"context"
	"fmt"
	"time"

	"product-scout/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createScanTables = `
CREATE TABLE IF NOT EXISTS scan_runs (
    id            BIGSERIAL   PRIMARY KEY,
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ NOT NULL,
    categories    TEXT[]      NOT NULL,
    scanned       INT         NOT NULL,
    profitable    INT         NOT NULL,
    skipped       INT         NOT NULL,
    cache_hits    INT         NOT NULL,
    remote_calls  INT         NOT NULL,
    alerts_sent   INT         NOT NULL,
    errors        TEXT[]      NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS scan_findings (
    run_id          BIGINT      NOT NULL REFERENCES scan_runs (id) ON DELETE CASCADE,
    keyword         TEXT        NOT NULL,
    category        TEXT        NOT NULL,
    buy_price       NUMERIC     NOT NULL,
    sell_price      NUMERIC     NOT NULL,
    profit          NUMERIC     NOT NULL,
    margin          NUMERIC     NOT NULL,
    competition     TEXT        NOT NULL,
    sold_count      INT         NOT NULL,
    meets_threshold BOOLEAN     NOT NULL,
    found_at        TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, keyword)
);

CREATE INDEX IF NOT EXISTS idx_scan_findings_found_at ON scan_findings (found_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ScanRepository stores finished scan cycles and their findings.
type ScanRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewScanRepository(pool PgxPool, tracer trace.Tracer) *ScanRepository {
	return &ScanRepository{pool: pool, tracer: tracer}
}

func (r *ScanRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "scan-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createScanTables)
	return err
}

// SaveRun inserts the cycle summary and every finding, returning the run id.
func (r *ScanRepository) SaveRun(ctx context.Context, result *domain.ScanResult) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "scan-repo.save-run")
	defer span.End()

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO scan_runs (started_at, finished_at, categories, scanned, profitable, skipped, cache_hits, remote_calls, alerts_sent, errors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		result.StartedAt, result.FinishedAt, result.Categories, result.Scanned, result.Profitable,
		result.Skipped, result.CacheHits, result.RemoteCalls, result.AlertsSent, errs,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert scan run: %w", err)
	}

	if len(result.Findings) == 0 {
		return id, nil
	}

	batch := &pgx.Batch{}
	for _, f := range result.Findings {
		batch.Queue(
			`INSERT INTO scan_findings (run_id, keyword, category, buy_price, sell_price, profit, margin, competition, sold_count, meets_threshold, found_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (run_id, keyword) DO NOTHING`,
			id, f.Keyword, f.Category, f.BuyPrice, f.SellPrice, f.Profit, f.Margin,
			string(f.Competition), f.SoldCount, f.MeetsThreshold, f.Timestamp,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range result.Findings {
		if _, err := br.Exec(); err != nil {
			return id, fmt.Errorf("insert scan findings: %w", err)
		}
	}
	return id, nil
}

// RecentRuns lists the latest runs, newest first, without findings.
func (r *ScanRepository) RecentRuns(ctx context.Context, limit int) ([]domain.ScanResult, error) {
	_, span := r.tracer.Start(ctx, "scan-repo.recent-runs")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, started_at, finished_at, categories, scanned, profitable, skipped, cache_hits, remote_calls, alerts_sent, errors
		 FROM scan_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ScanResult
	for rows.Next() {
		var run domain.ScanResult
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Categories, &run.Scanned, &run.Profitable,
			&run.Skipped, &run.CacheHits, &run.RemoteCalls, &run.AlertsSent, &run.Errors); err != nil {
			return nil, err
		}
		run.StartedAt = run.StartedAt.UTC()
		run.FinishedAt = run.FinishedAt.UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// TopFindings returns the most profitable threshold-meeting findings since
// the given time.
func (r *ScanRepository) TopFindings(ctx context.Context, since time.Time, limit int) ([]domain.Finding, error) {
	_, span := r.tracer.Start(ctx, "scan-repo.top-findings")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT keyword, category, buy_price, sell_price, profit, margin, competition, sold_count, meets_threshold, found_at
		 FROM scan_findings
		 WHERE found_at >= $1 AND meets_threshold
		 ORDER BY profit DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var competition string
		if err := rows.Scan(&f.Keyword, &f.Category, &f.BuyPrice, &f.SellPrice, &f.Profit, &f.Margin,
			&competition, &f.SoldCount, &f.MeetsThreshold, &f.Timestamp); err != nil {
			return nil, err
		}
		f.Name = domain.ProductName(f.Keyword)
		f.Competition = domain.Competition(competition)
		f.Timestamp = f.Timestamp.UTC()
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
