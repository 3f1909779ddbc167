package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-scout/internal/alert"
	"product-scout/internal/bot"
	"product-scout/internal/cache"
	"product-scout/internal/category"
	"product-scout/internal/clock"
	"product-scout/internal/config"
	"product-scout/internal/db"
	"product-scout/internal/handler"
	"product-scout/internal/history"
	"product-scout/internal/job"
	"product-scout/internal/listing"
	"product-scout/internal/metrics"
	"product-scout/internal/provider"
	"product-scout/internal/ratelimit"
	"product-scout/internal/repository"
	"product-scout/internal/scanner"
	"product-scout/internal/snapshot"
	"product-scout/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "product-scout/docs"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.ConnectRedis
	initTracerFunc   = tracing.InitTracer
	loadCatalogFunc  = func(path string) (*category.Catalog, error) {
		if path == "" {
			return category.DefaultCatalog(), nil
		}
		return category.LoadCatalogFile(path)
	}
	newPriceLookupFunc = func(cfg *config.Config, tracer trace.Tracer) scanner.PriceLookup {
		return provider.NewEbayProvider(cfg.EbayAppID, cfg.EbayBaseURL,
			time.Duration(cfg.RemoteTimeoutSecs)*time.Second, tracer)
	}
	newLLMClientFunc = func(apiKey string) listing.LLMClient {
		if apiKey == "" {
			return nil
		}
		return listing.NewOpenAIClient(apiKey)
	}
	newTelegramBotFunc     = bot.NewTelegramBot
	startTelegramBotFunc   = bot.StartTelegramBot
	startScanJobFunc       = func(j *job.ScanJob, ctx context.Context) { go j.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Product Scout API
// @version         1.0
// @description     Scans marketplace sold listings for profitable dropshipping products.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	defer db.Close()
	if cfg.SnapshotBackend == snapshot.BackendRedis {
		if err := initRedisFunc(ctx); err != nil {
			log.Printf("redis: %v", err)
		}
	}

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	catalog, err := loadCatalogFunc(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("failed to load keyword catalog: %v", err)
	}
	log.Printf("Loaded catalog with %d categories", catalog.Len())

	snapshots, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to prepare snapshot store: %v", err)
	}

	// Create repository and run migrations
	var runs *repository.ScanRepository
	if db.Pool != nil {
		runs = repository.NewScanRepository(db.Pool, tracer)
		if err := runs.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	clk := clock.Real{}
	limiter := ratelimit.New(clk, ratelimit.Config{
		Delay:   time.Duration(cfg.RateLimitDelayMs) * time.Millisecond,
		PerHour: cfg.RateLimitPerHour,
		PerDay:  cfg.RateLimitPerDay,
	})
	rnd := provider.NewRandSource(cfg.CostSeed)

	telegram := newTelegramBotFunc(cfg.TelegramBotToken)
	sinks := alert.Multi{alert.LogSink{}}
	if telegram != nil && cfg.TelegramAlertChatID != 0 {
		sinks = append(sinks, alert.NewTelegramSink(telegram, cfg.TelegramAlertChatID))
	}
	emailCfg := alert.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		TLS:      cfg.SMTPTLS,
		To:       cfg.AlertEmails,
	}
	if emailCfg.Enabled() {
		sinks = append(sinks, alert.NewEmailSink(emailCfg))
	}

	deps := scanner.Deps{
		Clock:     clk,
		Limiter:   limiter,
		Cache:     cache.NewTTLCache(clk, time.Duration(cfg.CacheTTLHours)*time.Hour),
		History:   history.NewStore(clk, time.Duration(cfg.HistoryRetentionDays)*24*time.Hour),
		Tracker:   category.NewTracker(clk, time.Duration(cfg.CategoryCooldownHours)*time.Hour),
		Catalog:   catalog,
		Lookup:    newPriceLookupFunc(cfg, tracer),
		Costs:     provider.NewSupplierEstimator(rnd),
		Demand:    provider.NewDemandEstimator(rnd),
		Alerts:    sinks,
		Snapshots: snapshots,
	}
	if runs != nil {
		deps.Runs = runs
	}
	sc := scanner.NewScanner(tracer, scannerConfig(cfg), deps)
	sc.LoadState(ctx)

	m := metrics.New(sc)
	sc.SetObserver(m)

	if cfg.ScanIntervalMins > 0 {
		scanJob := job.NewScanJob(tracer, sc, time.Duration(cfg.ScanIntervalMins)*time.Minute)
		startScanJobFunc(scanJob, ctx)
	} else {
		log.Println("SCAN_INTERVAL_MINS is 0, scans run on demand only")
	}

	// Start Telegram bot
	startTelegramBotFunc(telegram, sc)

	// Create handlers and routes
	listings := listing.NewGenerator(tracer, newLLMClientFunc(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	h := handler.New(tracer, sc, listings)
	if runs != nil {
		h.SetRunReader(runs)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware("product-scout"))

	trigger := handler.NewClientLimiter(cfg.TriggerRatePerMin, m.TriggerDenied)
	h.RegisterRoutes(r, handler.APIKeyAuth(cfg.APIKey), trigger.Middleware())
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func scannerConfig(cfg *config.Config) scanner.Config {
	sc := scanner.DefaultConfig()
	sc.MaxCategories = cfg.MaxCategories
	sc.Threshold = scanner.Threshold{
		Policy:    scanner.ThresholdPolicy(cfg.ThresholdPolicy),
		MinProfit: cfg.MinProfit,
		MinMargin: cfg.MinMargin,
	}
	sc.IncludeAll = cfg.IncludeAllFindings
	sc.PriceHistory = cfg.FeaturePriceHistory
	sc.CategoryScan = cfg.FeatureCategoryScan
	sc.Enrichment = cfg.FeatureEnrichment
	sc.StaticCategories = cfg.ScanCategories
	sc.RemoteTimeout = time.Duration(cfg.RemoteTimeoutSecs) * time.Second
	sc.Alert = alert.Policy{MinProfit: cfg.AlertMinProfit, MinMargin: cfg.AlertMinMargin}
	return sc
}

// newSnapshotStore picks the backend for cache, history and category state.
// Redis and Postgres fall back to files when their client is unavailable.
func newSnapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	switch cfg.SnapshotBackend {
	case snapshot.BackendRedis:
		if cache.Client != nil {
			return snapshot.NewRedisStore(cache.Client), nil
		}
		log.Println("Redis unavailable, keeping snapshots on disk")
	case snapshot.BackendPostgres:
		if db.Pool != nil {
			store := snapshot.NewPostgresStore(db.Pool)
			if err := store.RunMigrations(ctx); err != nil {
				return nil, err
			}
			return store, nil
		}
		log.Println("Postgres unavailable, keeping snapshots on disk")
	}
	return snapshot.NewFileStore(cfg.SnapshotDir), nil
}
