package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var allKeys = []string{
	"PORT", "DATABASE_URL", "STORAGE", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"PEAK_MONTHS", "LAST_MINUTE_DAYS", "LAST_MINUTE_PREMIUM", "EARLY_BIRD_DAYS", "EARLY_BIRD_DISCOUNT",
	"CURRENCY", "CURRENCY_MINOR_UNITS", "MAX_NIGHTS", "BOOKING_HORIZON_DAYS", "INVENTORY_CACHE_TTL",
	"SEARCH_CONCURRENCY", "BREAKER_MAX_FAILURES", "BREAKER_OPEN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(quietLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != defaultPort || cfg.DatabaseURL != defaultDatabaseURL || cfg.Storage != StoragePostgres {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.CORSOrigins)
	}
	if cfg.MaxNights != 30 || cfg.HorizonDays != 365 || cfg.SearchConcurrency != 8 {
		t.Fatalf("unexpected engine defaults: %+v", cfg)
	}
	if cfg.Pricing.Currency != "INR" || len(cfg.Pricing.PeakMonths) != 4 {
		t.Fatalf("unexpected pricing defaults: %+v", cfg.Pricing)
	}
	if cfg.BreakerMaxFailures != 5 || cfg.BreakerOpenTimeout != 10*time.Second {
		t.Fatalf("unexpected breaker defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "Memory")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("PEAK_MONTHS", "6,7")
	t.Setenv("LAST_MINUTE_PREMIUM", "1.3")
	t.Setenv("CURRENCY", "usd")
	t.Setenv("INVENTORY_CACHE_TTL", "2m")
	t.Setenv("BREAKER_MAX_FAILURES", "3")

	cfg, err := Load(quietLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.DatabaseURL != "" || cfg.Port != "9090" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if len(cfg.Pricing.PeakMonths) != 2 || cfg.Pricing.PeakMonths[0] != time.June {
		t.Fatalf("unexpected peak months: %v", cfg.Pricing.PeakMonths)
	}
	if !cfg.Pricing.LastMinutePremium.Equal(decimal.RequireFromString("1.3")) || cfg.Pricing.Currency != "USD" {
		t.Fatalf("unexpected pricing: %+v", cfg.Pricing)
	}
	if cfg.InventoryCacheTTL != 2*time.Minute || cfg.BreakerMaxFailures != 3 {
		t.Fatalf("unexpected tuning: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown storage", "STORAGE", "redis"},
		{"bad int", "MAX_NIGHTS", "thirty"},
		{"non-positive nights", "MAX_NIGHTS", "0"},
		{"bad decimal", "EARLY_BIRD_DISCOUNT", "ten percent"},
		{"bad duration", "INVENTORY_CACHE_TTL", "soon"},
		{"bad month", "PEAK_MONTHS", "13"},
		{"bad month name", "PEAK_MONTHS", "may"},
		{"window thresholds crossed", "LAST_MINUTE_DAYS", "90"},
		{"zero breaker failures", "BREAKER_MAX_FAILURES", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(quietLogger()); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoadEnvFile_ParentDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("STAY_TEST_FROM_FILE=yes\nSTAY_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	child := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(child); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("STAY_TEST_FROM_FILE", "")
	os.Unsetenv("STAY_TEST_FROM_FILE")
	t.Setenv("STAY_TEST_PRESET", "env")

	LoadEnvFile(quietLogger())

	if got := os.Getenv("STAY_TEST_FROM_FILE"); got != "yes" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("STAY_TEST_PRESET"); got != "env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}
