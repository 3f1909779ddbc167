package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"product-scout/internal/bot"
	"product-scout/internal/category"
	"product-scout/internal/config"
	"product-scout/internal/domain"
	"product-scout/internal/job"
	"product-scout/internal/listing"
	"product-scout/internal/scanner"
	"product-scout/internal/snapshot"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(t)
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestMainSurvivesUnreachableRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(t)
	defer restore()

	dir := t.TempDir()
	base := loadConfigFunc()
	loadConfigFunc = func() *config.Config {
		cfg := *base
		cfg.SnapshotBackend = snapshot.BackendRedis
		cfg.SnapshotDir = dir
		return &cfg
	}
	var dialed bool
	initRedisFunc = func(context.Context) error {
		dialed = true
		return errors.New("dial tcp: connection refused")
	}
	// one cancelled cycle is enough to persist state
	startScanJobFunc = func(j *job.ScanJob, _ context.Context) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		j.Start(ctx)
	}

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if !dialed {
		t.Fatal("expected a redis connection attempt")
	}
	if _, err := os.Stat(filepath.Join(dir, "category_performance.json")); err != nil {
		t.Fatalf("expected snapshots on disk after redis failure: %v", err)
	}
}

func TestScannerConfig(t *testing.T) {
	cfg := &config.Config{
		MaxCategories:       3,
		ThresholdPolicy:     "always",
		MinProfit:           7,
		MinMargin:           25,
		IncludeAllFindings:  false,
		FeaturePriceHistory: true,
		FeatureCategoryScan: false,
		ScanCategories:      []string{"Pet Supplies"},
		RemoteTimeoutSecs:   4,
		AlertMinProfit:      30,
		AlertMinMargin:      50,
	}

	sc := scannerConfig(cfg)
	if sc.MaxCategories != 3 || sc.Threshold.Policy != scanner.PolicyAlways || sc.Threshold.MinProfit != 7 {
		t.Fatalf("unexpected scanner config: %+v", sc)
	}
	if sc.IncludeAll || sc.CategoryScan || !sc.PriceHistory || len(sc.StaticCategories) != 1 {
		t.Fatalf("unexpected flags: %+v", sc)
	}
	if sc.RemoteTimeout != 4*time.Second || sc.Alert.MinProfit != 30 || sc.Alert.MinMargin != 50 {
		t.Fatalf("unexpected timeouts or alert policy: %+v", sc)
	}
}

func TestNewSnapshotStoreFallsBackToFiles(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{snapshot.BackendFile, snapshot.BackendRedis, snapshot.BackendPostgres} {
		store, err := newSnapshotStore(context.Background(), &config.Config{SnapshotBackend: backend, SnapshotDir: dir})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", backend, err)
		}
		if _, ok := store.(*snapshot.FileStore); !ok {
			t.Fatalf("%s: expected file store, got %T", backend, store)
		}
	}
}

func stubServerDeps(t *testing.T) func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origLoadCatalog := loadCatalogFunc
	origNewLookup := newPriceLookupFunc
	origNewLLM := newLLMClientFunc
	origNewTelegram := newTelegramBotFunc
	origStartTelegram := startTelegramBotFunc
	origStartJob := startScanJobFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	dir := t.TempDir()
	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			HTTPPort:              "0",
			SnapshotBackend:       snapshot.BackendFile,
			SnapshotDir:           dir,
			ScanIntervalMins:      60,
			MaxCategories:         5,
			RateLimitDelayMs:      1,
			RateLimitPerHour:      80,
			RateLimitPerDay:       4000,
			CacheTTLHours:         24,
			HistoryRetentionDays:  90,
			CategoryCooldownHours: 12,
			RemoteTimeoutSecs:     1,
			ThresholdPolicy:       "gated",
			TriggerRatePerMin:     6,
			OpenAIModel:           "gpt-4o-mini",
		}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) error { return nil }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	loadCatalogFunc = func(string) (*category.Catalog, error) { return category.DefaultCatalog(), nil }
	newPriceLookupFunc = func(*config.Config, trace.Tracer) scanner.PriceLookup { return stubLookup{} }
	newLLMClientFunc = func(string) listing.LLMClient { return nil }
	newTelegramBotFunc = func(string) *tele.Bot { return nil }
	startTelegramBotFunc = func(*tele.Bot, bot.ScanService) {}
	startScanJobFunc = func(*job.ScanJob, context.Context) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		loadCatalogFunc = origLoadCatalog
		newPriceLookupFunc = origNewLookup
		newLLMClientFunc = origNewLLM
		newTelegramBotFunc = origNewTelegram
		startTelegramBotFunc = origStartTelegram
		startScanJobFunc = origStartJob
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubLookup struct{}

func (stubLookup) FindCompleted(context.Context, string) (*domain.PriceSummary, error) {
	return nil, nil
}
