package config

import (
	"os"
	"testing"
	"time"
)

var configEnvVars = []string{
	"SEARCH_API_KEY", "SEARCH_AUTH_SCHEME", "SEARCH_BASE_URL", "SEARCH_PAGE_SIZE",
	"SEARCH_TIMEOUT_SEC", "SUGGEST_BASE_URL", "SUGGEST_LANG", "SUGGEST_TIMEOUT_SEC",
	"SUGGEST_CACHE_TTL_SEC", "HISTORY_BACKEND", "DATABASE_URL", "HISTORY_SQLITE_PATH",
	"DEBOUNCE_MS", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL",
}

func clearEnvVars() {
	for _, k := range configEnvVars {
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name: "valid config with defaults",
			envVars: map[string]string{
				"SEARCH_API_KEY": "test_key",
			},
			wantErr: nil,
		},
		{
			name:    "missing api key",
			envVars: map[string]string{},
			wantErr: ErrMissingAPIKey,
		},
		{
			name: "postgres backend without database url",
			envVars: map[string]string{
				"SEARCH_API_KEY":  "test_key",
				"HISTORY_BACKEND": "postgres",
			},
			wantErr: ErrMissingDB,
		},
		{
			name: "postgres backend with database url",
			envVars: map[string]string{
				"SEARCH_API_KEY":  "test_key",
				"HISTORY_BACKEND": "postgres",
				"DATABASE_URL":    "postgres://localhost:5432/test",
			},
			wantErr: nil,
		},
		{
			name: "unknown backend",
			envVars: map[string]string{
				"SEARCH_API_KEY":  "test_key",
				"HISTORY_BACKEND": "redis",
			},
			wantErr: ErrInvalidBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer clearEnvVars()

			cfg, err := Load()

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
				return
			}

			if cfg.Search.APIKey != "test_key" {
				t.Errorf("Search.APIKey = %q, want %q", cfg.Search.APIKey, "test_key")
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars()
	os.Setenv("SEARCH_API_KEY", "test_key")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.Search.AuthScheme != "KakaoAK" {
		t.Errorf("Search.AuthScheme = %q, want KakaoAK", cfg.Search.AuthScheme)
	}
	if cfg.Search.BaseURL != "https://dapi.kakao.com/v2/search" {
		t.Errorf("unexpected Search.BaseURL %q", cfg.Search.BaseURL)
	}
	if cfg.Debounce.Interval != 500*time.Millisecond {
		t.Errorf("Debounce.Interval = %v, want 500ms", cfg.Debounce.Interval)
	}
	if cfg.History.Backend != HistoryBackendSQLite {
		t.Errorf("History.Backend = %q, want sqlite", cfg.History.Backend)
	}
	if cfg.Suggest.CacheTTL != time.Minute {
		t.Errorf("Suggest.CacheTTL = %v, want 1m", cfg.Suggest.CacheTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnvVars()
	os.Setenv("SEARCH_API_KEY", "test_key")
	os.Setenv("DEBOUNCE_MS", "250")
	os.Setenv("SEARCH_PAGE_SIZE", "30")
	os.Setenv("SUGGEST_LANG", "ko")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.Debounce.Interval != 250*time.Millisecond {
		t.Errorf("Debounce.Interval = %v, want 250ms", cfg.Debounce.Interval)
	}
	if cfg.Search.PageSize != 30 {
		t.Errorf("Search.PageSize = %d, want 30", cfg.Search.PageSize)
	}
	if cfg.Suggest.Language != "ko" {
		t.Errorf("Suggest.Language = %q, want ko", cfg.Suggest.Language)
	}
}
