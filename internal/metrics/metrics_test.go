package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipe-planner/internal/database"
)

func TestStore(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := NewStore(db.SQL)
	now := time.Now().UTC()

	records := []RequestMetric{
		{Method: "GET", Route: "/recipes", Status: 200, LatencyMS: 10, Timestamp: now},
		{Method: "POST", Route: "/shopping", Status: 500, LatencyMS: 30, Timestamp: now},
		{Method: "GET", Route: "/recipes", Status: 200, LatencyMS: 5, Timestamp: now.AddDate(0, 0, -40)},
	}
	for _, m := range records {
		if err := store.Record(m); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day, got %d", len(usage))
		}
		if usage[0].Date != now.Format("2006-01-02") {
			t.Errorf("Expected date %s, got %s", now.Format("2006-01-02"), usage[0].Date)
		}
		if usage[0].Requests != 2 || usage[0].ServerErrors != 1 {
			t.Errorf("Expected 2 requests and 1 error, got %d and %d", usage[0].Requests, usage[0].ServerErrors)
		}
		if usage[0].AvgLatencyMS != 20 {
			t.Errorf("Expected average latency 20, got %v", usage[0].AvgLatencyMS)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 row removed, got %d", n)
		}
	})
}

func TestCollectHealth(t *testing.T) {
	t.Run("WithDataDirectory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "recipes.db"), make([]byte, 2048), 0644); err != nil {
			t.Fatal(err)
		}

		h := CollectHealth(dir)
		if h.Status != "ok" {
			t.Errorf("Expected status 'ok', got '%s'", h.Status)
		}
		if h.Database == nil {
			t.Fatal("Expected database usage")
		}
		if h.Database.Bytes != 2048 || h.Database.Size != "2.0 KiB" {
			t.Errorf("Expected 2048 bytes (2.0 KiB), got %d (%s)", h.Database.Bytes, h.Database.Size)
		}
		if h.Goroutines < 1 {
			t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
		}
	})

	t.Run("WithoutDataDirectory", func(t *testing.T) {
		if h := CollectHealth(""); h.Database != nil {
			t.Errorf("Expected no database usage, got %+v", h.Database)
		}
	})
}
