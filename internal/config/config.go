package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPPort    string
	APIKey      string
	DatabaseURL string
	RedisURL    string

	TelegramBotToken    string
	TelegramAlertChatID int64

	EbayAppID         string
	EbayBaseURL       string
	RemoteTimeoutSecs int

	RateLimitDelayMs int
	RateLimitPerHour int
	RateLimitPerDay  int

	CacheTTLHours         int
	HistoryRetentionDays  int
	CategoryCooldownHours int

	SnapshotBackend string
	SnapshotDir     string
	CatalogFile     string

	ScanIntervalMins  int
	MaxCategories     int
	ScanCategories    []string
	TriggerRatePerMin int

	ThresholdPolicy     string
	MinProfit           float64
	MinMargin           float64
	IncludeAllFindings  bool
	FeaturePriceHistory bool
	FeatureCategoryScan bool
	FeatureEnrichment   bool
	CostSeed            int64

	AlertMinProfit float64
	AlertMinMargin float64
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SMTPTLS        string
	AlertEmails    []string

	OpenAIAPIKey string
	OpenAIModel  string

	SSHPort                int
	SSHHostKeyPath         string
	SSHAllowedFingerprints []string
	DashboardAPIURL        string
}

func Load() *Config {
	cfg := &Config{
		APIKey:           os.Getenv("API_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		EbayAppID:        os.Getenv("EBAY_APP_ID"),
		EbayBaseURL:      strings.TrimSpace(os.Getenv("EBAY_BASE_URL")),
		CatalogFile:      strings.TrimSpace(os.Getenv("CATALOG_FILE")),
		SMTPHost:         strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         strings.TrimSpace(os.Getenv("SMTP_FROM")),
		SMTPTLS:          strings.ToLower(strings.TrimSpace(os.Getenv("SMTP_TLS"))),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	cfg.HTTPPort = strings.TrimSpace(os.Getenv("HTTP_PORT"))
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	if cfg.EbayAppID == "" {
		log.Println("Warning: EBAY_APP_ID not set, every keyword lookup will be skipped")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, scan runs will not be stored")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "localhost:6379"
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_ALERT_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramAlertChatID = n
		} else {
			log.Printf("Warning: invalid TELEGRAM_ALERT_CHAT_ID=%q, Telegram alerts disabled", v)
		}
	}

	cfg.RemoteTimeoutSecs = positiveInt("REMOTE_TIMEOUT_SECS", 10)
	cfg.RateLimitDelayMs = positiveInt("RATE_LIMIT_DELAY_MS", 3000)
	cfg.RateLimitPerHour = positiveInt("RATE_LIMIT_PER_HOUR", 80)
	cfg.RateLimitPerDay = positiveInt("RATE_LIMIT_PER_DAY", 4000)
	cfg.CacheTTLHours = positiveInt("CACHE_TTL_HOURS", 24)
	cfg.HistoryRetentionDays = positiveInt("HISTORY_RETENTION_DAYS", 90)
	cfg.CategoryCooldownHours = positiveInt("CATEGORY_COOLDOWN_HOURS", 12)
	cfg.MaxCategories = positiveInt("MAX_CATEGORIES", 5)
	cfg.TriggerRatePerMin = positiveInt("TRIGGER_RATE_PER_MIN", 6)
	cfg.SMTPPort = positiveInt("SMTP_PORT", 587)

	cfg.ScanIntervalMins = 60
	if v := strings.TrimSpace(os.Getenv("SCAN_INTERVAL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ScanIntervalMins = n
		}
	}

	cfg.SnapshotBackend = strings.ToLower(strings.TrimSpace(os.Getenv("SNAPSHOT_BACKEND")))
	switch cfg.SnapshotBackend {
	case "":
		cfg.SnapshotBackend = "file"
	case "file", "redis", "postgres":
	default:
		log.Printf("Warning: unsupported SNAPSHOT_BACKEND=%q, defaulting to file", cfg.SnapshotBackend)
		cfg.SnapshotBackend = "file"
	}
	cfg.SnapshotDir = strings.TrimSpace(os.Getenv("SNAPSHOT_DIR"))
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = "data"
	}

	cfg.ThresholdPolicy = strings.ToLower(strings.TrimSpace(os.Getenv("THRESHOLD_POLICY")))
	if cfg.ThresholdPolicy == "" {
		cfg.ThresholdPolicy = "gated"
	}
	if cfg.ThresholdPolicy != "gated" && cfg.ThresholdPolicy != "always" {
		log.Printf("Warning: unsupported THRESHOLD_POLICY=%q, defaulting to gated", cfg.ThresholdPolicy)
		cfg.ThresholdPolicy = "gated"
	}

	cfg.MinProfit = floatVar("MIN_PROFIT", 5)
	cfg.MinMargin = floatVar("MIN_MARGIN", 20)
	cfg.AlertMinProfit = floatVar("ALERT_MIN_PROFIT", 20)
	cfg.AlertMinMargin = floatVar("ALERT_MIN_MARGIN", 40)

	cfg.IncludeAllFindings = boolVar("INCLUDE_ALL_FINDINGS", true)
	cfg.FeaturePriceHistory = boolVar("FEATURE_PRICE_HISTORY", true)
	cfg.FeatureCategoryScan = boolVar("FEATURE_CATEGORY_SCAN", true)
	cfg.FeatureEnrichment = boolVar("FEATURE_ENRICHMENT", true)

	cfg.ScanCategories = splitList(os.Getenv("SCAN_CATEGORIES"))
	cfg.AlertEmails = splitList(os.Getenv("ALERT_EMAIL"))

	if v := strings.TrimSpace(os.Getenv("COST_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.CostSeed = n
		}
	}

	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, listings will use the template")
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SSHPort = positiveInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}
	cfg.SSHAllowedFingerprints = splitList(os.Getenv("SSH_ALLOWED_FINGERPRINTS"))
	cfg.DashboardAPIURL = strings.TrimSpace(os.Getenv("DASHBOARD_API_URL"))
	if cfg.DashboardAPIURL == "" {
		cfg.DashboardAPIURL = "http://localhost:" + cfg.HTTPPort
	}

	return cfg
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func floatVar(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s=%q, using %g", key, v, def)
	}
	return def
}

func boolVar(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %t", key, v, def)
		return def
	}
	return b
}

// splitList parses a comma separated list, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
