package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestInitPostgresSkipsWithoutURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	origNew := newPool
	t.Cleanup(func() { newPool = origNew })
	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		t.Fatal("pool should not be created without DATABASE_URL")
		return nil, nil
	}

	InitPostgres(context.Background())
	if Pool != nil {
		t.Fatal("expected nil pool")
	}
}

func TestInitPostgresUsesURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://scout@localhost:5432/scout")

	origNew, origPing := newPool, pingDB
	t.Cleanup(func() {
		newPool, pingDB = origNew, origPing
		Close()
	})

	var captured string
	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		captured = dsn
		return pgxpool.New(ctx, dsn)
	}
	pingDB = func(ctx context.Context, pool *pgxpool.Pool) error { return nil }

	InitPostgres(context.Background())
	if captured != "postgres://scout@localhost:5432/scout" {
		t.Fatalf("unexpected dsn: %s", captured)
	}
	if Pool == nil {
		t.Fatal("expected pool to be set")
	}
}
