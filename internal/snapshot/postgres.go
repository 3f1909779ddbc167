package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS state_snapshots (
    name      TEXT        PRIMARY KEY,
    payload   JSONB       NOT NULL,
    saved_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps snapshots as JSONB rows keyed by name.
type PostgresStore struct {
	pool PgxPool
}

func NewPostgresStore(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, createSnapshotsTable)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, name string, v any) error {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM state_snapshots WHERE name = $1`, name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select snapshot %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO state_snapshots (name, payload, saved_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (name) DO UPDATE SET
		     payload = EXCLUDED.payload,
		     saved_at = EXCLUDED.saved_at`,
		name, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", name, err)
	}
	return nil
}
