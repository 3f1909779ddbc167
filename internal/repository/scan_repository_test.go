package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"product-scout/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.data[r.pos-1])
}

type fakeBatchResults struct {
	execErr error
	execs   int
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	b.execs++
	return pgconn.CommandTag{}, b.execErr
}
func (b *fakeBatchResults) Query() (pgx.Rows, error) { return &fakeRows{}, nil }
func (b *fakeBatchResults) QueryRow() pgx.Row        { return fakeRow{} }
func (b *fakeBatchResults) Close() error             { return nil }

type fakePool struct {
	execSQL   []string
	row       fakeRow
	rowArgs   []any
	batch     *pgx.Batch
	results   *fakeBatchResults
	rows      *fakeRows
	queryArgs []any
}

func (p *fakePool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	p.execSQL = append(p.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	p.batch = b
	if p.results == nil {
		p.results = &fakeBatchResults{}
	}
	return p.results
}

func (p *fakePool) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	p.queryArgs = args
	return p.rows, nil
}

func (p *fakePool) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	p.rowArgs = args
	return p.row
}

func newRepo(pool *fakePool) *ScanRepository {
	return NewScanRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))
}

func TestRunMigrations(t *testing.T) {
	pool := &fakePool{}
	if err := newRepo(pool).RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 1 || !strings.Contains(pool.execSQL[0], "scan_findings") {
		t.Fatalf("unexpected migration sql: %v", pool.execSQL)
	}
}

func TestSaveRunInsertsRunAndFindings(t *testing.T) {
	pool := &fakePool{row: fakeRow{values: []any{int64(42)}}}
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	result := &domain.ScanResult{
		StartedAt:  now,
		FinishedAt: now.Add(time.Minute),
		Categories: []string{"Pet Supplies"},
		Scanned:    2,
		Findings: []domain.Finding{
			{Keyword: "dog chew toys", Category: "Pet Supplies", Profit: 6, Competition: domain.CompetitionLow, Timestamp: now},
			{Keyword: "cat laser toy", Category: "Pet Supplies", Profit: 2, Competition: domain.CompetitionLow, Timestamp: now},
		},
	}

	id, err := newRepo(pool).SaveRun(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if errs, ok := pool.rowArgs[9].([]string); !ok || errs == nil {
		t.Fatalf("errors column should be a non-nil slice, got %#v", pool.rowArgs[9])
	}
	if pool.batch == nil || pool.batch.Len() != 2 || pool.results.execs != 2 {
		t.Fatalf("expected 2 queued finding inserts, got batch=%v", pool.batch)
	}
}

func TestSaveRunWithoutFindingsSkipsBatch(t *testing.T) {
	pool := &fakePool{row: fakeRow{values: []any{int64(7)}}}
	if _, err := newRepo(pool).SaveRun(context.Background(), &domain.ScanResult{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batch != nil {
		t.Fatal("no batch expected without findings")
	}
}

func TestSaveRunInsertError(t *testing.T) {
	pool := &fakePool{row: fakeRow{err: errors.New("conn refused")}}
	if _, err := newRepo(pool).SaveRun(context.Background(), &domain.ScanResult{}); err == nil || !strings.Contains(err.Error(), "conn refused") {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
}

func TestSaveRunFindingError(t *testing.T) {
	pool := &fakePool{
		row:     fakeRow{values: []any{int64(3)}},
		results: &fakeBatchResults{execErr: errors.New("constraint")},
	}
	result := &domain.ScanResult{Findings: []domain.Finding{{Keyword: "x"}}}
	id, err := newRepo(pool).SaveRun(context.Background(), result)
	if err == nil || id != 3 {
		t.Fatalf("expected finding error with run id, got %d %v", id, err)
	}
}

func TestRecentRuns(t *testing.T) {
	started := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	pool := &fakePool{rows: &fakeRows{data: [][]any{
		{int64(9), started, started.Add(time.Minute), []string{"Home & Garden"}, 5, 2, 1, 3, 2, 0, []string{}},
	}}}

	runs, err := newRepo(pool).RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != 9 || runs[0].Profitable != 2 || runs[0].Categories[0] != "Home & Garden" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if pool.queryArgs[0] != 10 {
		t.Fatalf("expected limit arg 10, got %v", pool.queryArgs)
	}
}

func TestTopFindings(t *testing.T) {
	found := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	pool := &fakePool{rows: &fakeRows{data: [][]any{
		{"jade roller face", "Beauty & Personal Care", 3.0, 45.0, 31.4, 69.9, "Low", 42, true, found},
	}}}

	findings, err := newRepo(pool).TopFindings(context.Background(), found.Add(-24*time.Hour), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Name != "Jade Roller Face" || f.Competition != domain.CompetitionLow || f.Profit != 31.4 {
		t.Fatalf("unexpected finding: %+v", f)
	}
}
