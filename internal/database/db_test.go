package database

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "recipes.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"recipes", "request_metrics"} {
		var name string
		err := db.SQL.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	if db.Dir() != filepath.Dir(dbPath) {
		t.Errorf("Expected dir %s, got %s", filepath.Dir(dbPath), db.Dir())
	}

	t.Run("ReopenIsNoChange", func(t *testing.T) {
		if err := RunMigrations(dbPath); err != nil {
			t.Errorf("Expected rerun to succeed, got %v", err)
		}
	})
}

func TestBackoff(t *testing.T) {
	expected := map[int]time.Duration{
		0:  time.Second,
		1:  time.Second,
		2:  2 * time.Second,
		4:  8 * time.Second,
		5:  10 * time.Second,
		14: 10 * time.Second,
	}
	for attempt, want := range expected {
		if got := Backoff(attempt); got != want {
			t.Errorf("Backoff(%d): expected %v, got %v", attempt, want, got)
		}
	}
}
