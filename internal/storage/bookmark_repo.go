package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// BookmarkStore defines the interface for bookmark storage operations.
type BookmarkStore interface {
	// GetAll returns every bookmark, most recent first.
	GetAll(ctx context.Context) ([]*Bookmark, error)
	// Add inserts a bookmark. Adding an already-bookmarked page is a no-op.
	Add(ctx context.Context, bookmark *Bookmark) error
	// Remove deletes a bookmark by page id.
	Remove(ctx context.Context, pageID string) error
	// DeleteAll deletes every bookmark.
	DeleteAll(ctx context.Context) error
}

// BookmarkRepo provides methods for bookmark operations.
// It implements the BookmarkStore interface.
type BookmarkRepo struct {
	db *sql.DB
}

// NewBookmarkRepo creates a new BookmarkRepo.
func NewBookmarkRepo(db *sql.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

// GetAll returns every bookmark, most recent first.
func (r *BookmarkRepo) GetAll(ctx context.Context) ([]*Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT page_id, title, timestamp FROM bookmarks ORDER BY timestamp DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	bookmarks := []*Bookmark{}
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.PageID, &b.Title, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}
	return bookmarks, rows.Err()
}

// Add inserts a bookmark. First write wins on the page id key.
func (r *BookmarkRepo) Add(ctx context.Context, bookmark *Bookmark) error {
	if bookmark.PageID == "" {
		return fmt.Errorf("bookmark page id is required")
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO bookmarks (page_id, title, timestamp) VALUES (?, ?, ?)",
		bookmark.PageID, bookmark.Title, bookmark.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return nil
}

// Remove deletes a bookmark by page id.
func (r *BookmarkRepo) Remove(ctx context.Context, pageID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

// DeleteAll deletes every bookmark.
func (r *BookmarkRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM bookmarks"); err != nil {
		return fmt.Errorf("failed to delete bookmarks: %w", err)
	}
	return nil
}
