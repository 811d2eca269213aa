package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything resolved at startup. Resolution order:
// process environment first, then the bundled .env file (skipped in
// production). A missing required key is a configuration error here,
// never a crash later.
type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	SearchAPIKey string
	SearchCX     string

	JWTSecret string

	Port           string
	RequestTimeout time.Duration
	SearchInterval time.Duration

	DatabaseURL string // optional: Postgres-backed store
	SQLitePath  string // fallback embedded store
}

var required = []string{
	"GEMINI_API_KEY",
	"GEMINI_MODEL",
	"SEARCH_API_KEY",
	"SEARCH_CX",
	"JWT_SECRET",
}

func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	var missing []string
	for _, k := range required {
		if os.Getenv(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL:  os.Getenv("GEMINI_BASE_URL"),
		SearchAPIKey:   os.Getenv("SEARCH_API_KEY"),
		SearchCX:       os.Getenv("SEARCH_CX"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Port:           getEnvOrDefault("PORT", "8000"),
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		SearchInterval: parseDurationOrDefault("SEARCH_INTERVAL", 300*time.Millisecond),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "menureader.db"),
	}

	if cfg.RequestTimeout <= 0 || cfg.SearchInterval <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, search=%s)",
			cfg.RequestTimeout, cfg.SearchInterval)
	}

	return cfg, nil
}

// RequireR2 validates the object-storage keys the sync worker needs.
func RequireR2() error {
	var missing []string
	for _, k := range []string{"R2_ACCESS_KEY", "R2_SECRET_KEY", "R2_BUCKET_NAME", "R2_ENDPOINT", "R2_PUBLIC_BASE_URL"} {
		if os.Getenv(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
