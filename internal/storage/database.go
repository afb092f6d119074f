package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// Open opens a SQLite database at the given path with WAL journaling and
// foreign keys enabled.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL allows concurrent readers while a writer is active
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the required tables. It is idempotent and records the store
// creation time in app_state on first run.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS wiki_pages (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			related_topics TEXT NOT NULL,
			suggested_questions TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			parent_id TEXT,
			is_placeholder INTEGER DEFAULT 0,
			mindmap_position TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS learning_sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			pages TEXT NOT NULL,
			current_page_id TEXT NOT NULL,
			breadcrumbs TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			page_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS knowledge_nodes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			children TEXT NOT NULL,
			parent TEXT,
			depth INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS page_views (
			page_id TEXT PRIMARY KEY,
			first_viewed_at INTEGER NOT NULL,
			last_viewed_at INTEGER NOT NULL,
			view_count INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS generation_jobs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			type TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT,
			error TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pages_title ON wiki_pages(title);`,
		`CREATE INDEX IF NOT EXISTS idx_pages_parent ON wiki_pages(parent_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON learning_sessions(started_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_bookmarks_timestamp ON bookmarks(timestamp DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON generation_jobs(status, created_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	_, err := db.Exec(
		"INSERT OR IGNORE INTO app_state (key, value) VALUES (?, ?)",
		createdAtKey, strconv.FormatInt(time.Now().UnixMilli(), 10),
	)
	if err != nil {
		return fmt.Errorf("failed to record store creation time: %w", err)
	}

	return nil
}

const createdAtKey = "store_created_at"
