package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "production") // skips .env so the test owns the environment
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("SEARCH_API_KEY", "sk")
	t.Setenv("SEARCH_CX", "cx")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.SearchInterval != 300*time.Millisecond {
		t.Errorf("expected 300ms search interval, got %s", cfg.SearchInterval)
	}
	if cfg.SQLitePath != "menureader.db" {
		t.Errorf("expected default sqlite path, got %s", cfg.SQLitePath)
	}
}

func TestLoad_MissingRequiredNamesEveryKey(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	for _, key := range []string{"GEMINI_API_KEY", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name %s: %v", key, err)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("REQUEST_TIMEOUT", "10s")
	t.Setenv("SEARCH_INTERVAL", "50ms")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.RequestTimeout != 10*time.Second || cfg.SearchInterval != 50*time.Millisecond {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected fallback to 30s, got %s", cfg.RequestTimeout)
	}
}

func TestRequireR2(t *testing.T) {
	for _, k := range []string{"R2_ACCESS_KEY", "R2_SECRET_KEY", "R2_BUCKET_NAME", "R2_ENDPOINT", "R2_PUBLIC_BASE_URL"} {
		t.Setenv(k, "")
	}
	if err := RequireR2(); err == nil {
		t.Fatal("expected error with no object-storage env")
	}

	for _, k := range []string{"R2_ACCESS_KEY", "R2_SECRET_KEY", "R2_BUCKET_NAME", "R2_ENDPOINT", "R2_PUBLIC_BASE_URL"} {
		t.Setenv(k, "x")
	}
	if err := RequireR2(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
