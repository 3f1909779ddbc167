// Package snapshot persists named JSON snapshots of in-memory state.
//
// Each store overwrites a snapshot as a whole. A crash mid-save leaves the
// previous snapshot readable.
package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no snapshot with that name exists.
var ErrNotFound = errors.New("snapshot not found")

// Store loads and saves named snapshots. v is JSON-encoded.
type Store interface {
	Load(ctx context.Context, name string, v any) error
	Save(ctx context.Context, name string, v any) error
}

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)
