package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, "cache", sample{Name: "phone case", Count: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got sample
	if err := store.Load(ctx, "cache", &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "phone case" || got.Count != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestFileStoreMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())

	var got sample
	if err := store.Load(context.Background(), "absent", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cache.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got sample
	err := NewFileStore(dir).Load(context.Background(), "cache", &got)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nested"))

	for i := 0; i < 3; i++ {
		if err := store.Save(context.Background(), "tracker", sample{Count: i}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "tracker.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, "history", sample{Name: "yoga mat", Count: 7}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := client.data["snapshot:history"]; !ok {
		t.Fatalf("expected snapshot:history key, got %v", client.data)
	}

	var got sample
	if err := store.Load(ctx, "history", &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Count != 7 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestRedisStoreMissing(t *testing.T) {
	var got sample
	err := NewRedisStore(newFakeRedis()).Load(context.Background(), "cache", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreSetError(t *testing.T) {
	client := newFakeRedis()
	client.setErr = errors.New("connection refused")

	if err := NewRedisStore(client).Save(context.Background(), "cache", sample{}); err == nil {
		t.Fatal("expected save error")
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	pool := &fakePool{rows: make(map[string][]byte)}
	store := NewPostgresStore(pool)
	ctx := context.Background()

	if err := store.RunMigrations(ctx); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if err := store.Save(ctx, "tracker", sample{Name: "Pet Supplies", Count: 2}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got sample
	if err := store.Load(ctx, "tracker", &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "Pet Supplies" || got.Count != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if pool.execCalls != 2 {
		t.Fatalf("expected 2 exec calls, got %d", pool.execCalls)
	}
}

func TestPostgresStoreMissing(t *testing.T) {
	var got sample
	err := NewPostgresStore(&fakePool{rows: map[string][]byte{}}).Load(context.Background(), "cache", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

// fakePool understands only the statements PostgresStore issues.
type fakePool struct {
	rows      map[string][]byte
	execCalls int
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execCalls++
	if len(args) == 2 {
		name, _ := args[0].(string)
		payload, _ := args[1].([]byte)
		p.rows[name] = append([]byte(nil), payload...)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	name, _ := args[0].(string)
	payload, ok := p.rows[name]
	return fakeRow{payload: payload, found: ok}
}

type fakeRow struct {
	payload []byte
	found   bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.found {
		return pgx.ErrNoRows
	}
	if out, ok := dest[0].(*[]byte); ok {
		*out = append([]byte(nil), r.payload...)
	}
	return nil
}
