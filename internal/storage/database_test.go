package storage

import (
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	tables := []string{
		"wiki_pages", "learning_sessions", "bookmarks",
		"knowledge_nodes", "page_views", "generation_jobs", "app_state",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after Migrate(): %v", table, err)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() first run error = %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	// The creation timestamp is written once and never overwritten
	var count int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM app_state WHERE key = ?", createdAtKey).Scan(&count); err != nil {
		t.Fatalf("query app_state error = %v", err)
	}
	if count != 1 {
		t.Errorf("creation timestamp rows = %d, want 1", count)
	}
}
