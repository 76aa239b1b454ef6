package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"wellness-planner/internal/database"
	"wellness-planner/internal/planner"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// runStoreContract exercises the planner.Store behavior every backend must share.
func runStoreContract(t *testing.T, store planner.Store) {
	t.Helper()
	ctx := context.Background()

	plan := planner.FallbackPlan("2025-01-15")
	plan.Quote = planner.Quote{Text: "Drink water.", Author: "Unknown"}

	t.Run("Get-NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "2025-01-15")
		if !errors.Is(err, planner.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		if err := store.Upsert(ctx, plan); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := store.Get(ctx, "2025-01-15")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !reflect.DeepEqual(got, plan) {
			t.Errorf("Expected round-trip equality.\nwant %+v\ngot  %+v", plan, got)
		}
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		updated := planner.FallbackPlan("2025-01-15")
		updated.Quote.Text = "Replaced."
		if err := store.Upsert(ctx, updated); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := store.Get(ctx, "2025-01-15")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Quote.Text != "Replaced." {
			t.Errorf("Expected replaced quote, got %q", got.Quote.Text)
		}
		all, err := store.List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("Expected a single row for the date, got %d", len(all))
		}
	})

	t.Run("UpsertRejectsBadDate", func(t *testing.T) {
		bad := planner.FallbackPlan("15-01-2025")
		if err := store.Upsert(ctx, bad); err == nil {
			t.Error("Expected an error for malformed date, got nil")
		}
	})

	t.Run("ListAndPurge", func(t *testing.T) {
		for _, d := range []string{"2024-12-01", "2024-12-16", "2025-01-10"} {
			if err := store.Upsert(ctx, planner.FallbackPlan(d)); err != nil {
				t.Fatalf("Upsert %s failed: %v", d, err)
			}
		}

		latest, err := store.List(ctx, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(latest) != 2 || latest[0].Date != "2025-01-15" || latest[1].Date != "2025-01-10" {
			t.Errorf("Expected newest two plans, got %v", dates(latest))
		}

		n, err := store.DeleteOlderThan(ctx, "2024-12-16")
		if err != nil {
			t.Fatalf("DeleteOlderThan failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 plan deleted, got %d", n)
		}
		if _, err := store.Get(ctx, "2024-12-16"); err != nil {
			t.Errorf("Expected plan on cutoff date to remain, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		ok, err := store.Delete(ctx, "2025-01-10")
		if err != nil || !ok {
			t.Fatalf("Expected delete to succeed, got %v, %v", ok, err)
		}
		ok, err = store.Delete(ctx, "2025-01-10")
		if err != nil || ok {
			t.Errorf("Expected second delete to report false, got %v, %v", ok, err)
		}
	})
}

func dates(plans []planner.Plan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.Date
	}
	return out
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plans")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to create FileStore: %v", err)
	}
	runStoreContract(t, store)

	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "plan_notes.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	plans, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, p := range plans {
		if p.Date == "notes" {
			t.Error("Expected stray file to be skipped")
		}
	}
}

func TestSQLStore(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runStoreContract(t, NewSQLStore(db.SQL))
}

func TestGormStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "gorm.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm database: %v", err)
	}
	store, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("Failed to create GormStore: %v", err)
	}
	defer store.Close()

	runStoreContract(t, store)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test db: %v", err)
	}
	store := NewRedisStore(rdb)
	defer store.Close()

	runStoreContract(t, store)
}

func TestDateScore(t *testing.T) {
	score, err := dateScore("2025-01-15")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if score != 20250115 {
		t.Errorf("Expected 20250115, got %v", score)
	}
	if _, err := dateScore("yesterday"); err == nil {
		t.Error("Expected an error for malformed date")
	}
}
