package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingAPIKey  = errors.New("SEARCH_API_KEY is required")
	ErrMissingDB      = errors.New("DATABASE_URL is required for the postgres history backend")
	ErrInvalidBackend = errors.New("invalid history backend")
)

const (
	HistoryBackendSQLite   = "sqlite"
	HistoryBackendPostgres = "postgres"
)

type Config struct {
	Search    SearchConfig
	Suggest   SuggestConfig
	History   HistoryConfig
	Debounce  DebounceConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type SearchConfig struct {
	APIKey     string
	AuthScheme string
	BaseURL    string
	PageSize   int
	Timeout    time.Duration
}

type SuggestConfig struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type HistoryConfig struct {
	Backend     string
	DatabaseURL string // postgres backend
	Path        string // sqlite backend
}

type DebounceConfig struct {
	Interval time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Search: SearchConfig{
			APIKey:     os.Getenv("SEARCH_API_KEY"),
			AuthScheme: getEnvOrDefault("SEARCH_AUTH_SCHEME", "KakaoAK"),
			BaseURL:    getEnvOrDefault("SEARCH_BASE_URL", "https://dapi.kakao.com/v2/search"),
			PageSize:   getEnvIntOrDefault("SEARCH_PAGE_SIZE", 10),
			Timeout:    time.Duration(getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", 10)) * time.Second,
		},
		Suggest: SuggestConfig{
			BaseURL:  getEnvOrDefault("SUGGEST_BASE_URL", "https://suggestqueries.google.com/complete/search"),
			Language: getEnvOrDefault("SUGGEST_LANG", "en"),
			Timeout:  time.Duration(getEnvIntOrDefault("SUGGEST_TIMEOUT_SEC", 5)) * time.Second,
			CacheTTL: time.Duration(getEnvIntOrDefault("SUGGEST_CACHE_TTL_SEC", 60)) * time.Second,
		},
		History: HistoryConfig{
			Backend:     getEnvOrDefault("HISTORY_BACKEND", HistoryBackendSQLite),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Path:        getEnvOrDefault("HISTORY_SQLITE_PATH", "search_history.db"),
		},
		Debounce: DebounceConfig{
			Interval: time.Duration(getEnvIntOrDefault("DEBOUNCE_MS", 500)) * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Search.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.History.Backend {
	case HistoryBackendSQLite:
	case HistoryBackendPostgres:
		if c.History.DatabaseURL == "" {
			return ErrMissingDB
		}
	default:
		return ErrInvalidBackend
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
