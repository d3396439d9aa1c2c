package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string // development, staging, production

	// Storage. An empty DatabaseURL selects the in-memory repository.
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime int // minutes
	DBReadTimeout     time.Duration
	DBWriteTimeout    time.Duration

	// Drafts. An empty RedisURL keeps drafts in memory.
	RedisURL string
	DraftTTL time.Duration

	// Matching
	MatchMinScore   float64
	StackNameRules  bool
	MatchWorkers    int
	MatchQueueSize  int
	MatchRunTimeout time.Duration

	// Roles file for admin UI hints
	RolesFile string

	// Optional integrations, disabled without a key
	GoogleMapsAPIKey   string
	GeocodeRatePerSec  float64
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIMaxTokens    int
	OpenAITimeout      time.Duration
	OpenAIMonthlyLimit float64 // USD

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"
	LogFile   string // optional JSON file sink

	MetricsEnabled bool
	MetricsPath    string

	ConfigReloadInterval time.Duration
}

func Load() *Config {
	env := strings.ToLower(getEnv("ENV", "development"))

	minScore, _ := strconv.ParseFloat(getEnv("MATCH_MIN_SCORE", "60"), 64)
	stack, _ := strconv.ParseBool(getEnv("MATCH_STACK_NAME_RULES", "true"))
	workers, _ := strconv.Atoi(getEnv("MATCH_WORKERS", "4"))
	queue, _ := strconv.Atoi(getEnv("MATCH_QUEUE_SIZE", "32"))
	runTO, _ := time.ParseDuration(getEnv("MATCH_RUN_TIMEOUT", "2m"))

	dbMaxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	dbMaxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	dbLifetime, _ := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "10"))
	dbReadTO, _ := time.ParseDuration(getEnv("DB_READ_TIMEOUT", "8s"))
	dbWriteTO, _ := time.ParseDuration(getEnv("DB_WRITE_TIMEOUT", "6s"))

	draftTTL, _ := time.ParseDuration(getEnv("DRAFT_TTL", "720h"))

	geoRate, _ := strconv.ParseFloat(getEnv("GEOCODE_RATE_PER_SEC", "5"), 64)
	openAIMaxTokens, _ := strconv.Atoi(getEnv("OPENAI_MAX_TOKENS", "300"))
	openAITO, _ := time.ParseDuration(getEnv("OPENAI_TIMEOUT", "30s"))
	openAILimit, _ := strconv.ParseFloat(getEnv("OPENAI_MONTHLY_LIMIT_USD", "20"), 64)

	metricsDefault := env == "development" || env == "staging"
	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", strconv.FormatBool(metricsDefault)))

	reload, _ := time.ParseDuration(getEnv("CONFIG_RELOAD_INTERVAL", "5s"))

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  env,

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    dbMaxOpen,
		DBMaxIdleConns:    dbMaxIdle,
		DBConnMaxLifetime: dbLifetime,
		DBReadTimeout:     dbReadTO,
		DBWriteTimeout:    dbWriteTO,

		RedisURL: getEnv("REDIS_URL", ""),
		DraftTTL: draftTTL,

		MatchMinScore:   minScore,
		StackNameRules:  stack,
		MatchWorkers:    workers,
		MatchQueueSize:  queue,
		MatchRunTimeout: runTO,

		RolesFile: getEnv("ROLES_FILE", "roles.yaml"),

		GoogleMapsAPIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeRatePerSec:  geoRate,
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxTokens:    openAIMaxTokens,
		OpenAITimeout:      openAITO,
		OpenAIMonthlyLimit: openAILimit,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   getEnv("LOG_FILE", ""),

		MetricsEnabled: metricsEnabled,
		MetricsPath:    getEnv("METRICS_PATH", "/metrics"),

		ConfigReloadInterval: reload,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
