package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"wellness-planner/internal/config"
	"wellness-planner/internal/logger"
	"wellness-planner/internal/planner"

	"github.com/gin-gonic/gin"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LLMProvider:    "gemini",
		DeploymentMode: config.ModePersistent,
		StoreBackend:   config.BackendFile,
		DataDir:        dir,
		DatabasePath:   filepath.Join(dir, "wellness.db"),
		RetentionDays:  30,
		Timezone:       "UTC",
	}
}

func TestNewWithoutProvider(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	if a.Metrics == nil {
		t.Error("Expected metrics store in persistent mode")
	}
	if a.Pipeline != nil {
		t.Error("Expected no delivery pipeline without SendGrid key")
	}

	res, err := a.Resolver.Resolve(context.Background(), planner.Request{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != planner.SourceFallback {
		t.Errorf("Expected fallback source without an LLM key, got %s", res.Source)
	}
	if !res.Persisted {
		t.Error("Expected fallback plan to be persisted")
	}

	again, _ := a.Resolver.Resolve(context.Background(), planner.Request{})
	if again.Source != planner.SourceStore {
		t.Errorf("Expected stored plan on second resolve, got %s", again.Source)
	}
}

func TestNewSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = config.BackendSQLite

	a, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	plan := planner.FallbackPlan("2025-01-15")
	if err := a.Store.Upsert(context.Background(), plan); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	exists, err := a.Resolver.Exists(context.Background(), "2025-01-15")
	if err != nil || !exists {
		t.Errorf("Expected plan to exist, got %v (%v)", exists, err)
	}
}

func TestNewEphemeral(t *testing.T) {
	cfg := testConfig(t)
	cfg.DeploymentMode = config.ModeEphemeral

	a, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	if a.Metrics != nil {
		t.Error("Expected no metrics store in ephemeral mode")
	}
	res, err := a.Resolver.Resolve(context.Background(), planner.Request{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Persisted {
		t.Error("Expected ephemeral resolution not to persist")
	}
}

func TestNewInvalidMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.DeploymentMode = "sometimes"
	if _, err := New(context.Background(), cfg, logger.Nop()); err == nil {
		t.Error("Expected error for invalid mode")
	}
}

func TestRunDailyJobNotConfigured(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	if _, err := a.RunDailyJob(context.Background()); !errors.Is(err, ErrDeliveryNotConfigured) {
		t.Errorf("Expected ErrDeliveryNotConfigured, got %v", err)
	}
}

func TestServerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig(t), logger.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestResolverTodayFollowsTimezone(t *testing.T) {
	t.Setenv("TZ", "UTC")

	today := func(zone string) string {
		t.Helper()
		cfg := testConfig(t)
		cfg.Timezone = zone
		a, err := New(context.Background(), cfg, logger.Nop())
		if err != nil {
			t.Fatalf("Expected no error for %s, got %v", zone, err)
		}
		defer a.Close()

		want := time.Now().In(a.Location).Format(planner.DateLayout)
		got := a.Resolver.Today()
		if got != want {
			t.Errorf("Expected today in %s to be %s, got %s", zone, want, got)
		}
		return got
	}

	// UTC-10 and UTC+14 are always on different calendar dates.
	if west, east := today("Pacific/Honolulu"), today("Pacific/Kiritimati"); west == east {
		t.Errorf("Expected different dates across the date line, got %s for both", west)
	}
}

func TestNewInvalidTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Mars/Olympus"
	if _, err := New(context.Background(), cfg, logger.Nop()); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}
