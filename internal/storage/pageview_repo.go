package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PageViewStore defines the interface for page view accounting.
type PageViewStore interface {
	// GetAll returns every page view, most recently viewed first.
	GetAll(ctx context.Context) ([]*PageView, error)
	// GetByPageID returns the view record for a page, or ErrNotFound.
	GetByPageID(ctx context.Context, pageID string) (*PageView, error)
	// RecordView creates the record with count 1 on first view, or increments
	// the count and bumps lastViewedAt on subsequent views.
	RecordView(ctx context.Context, pageID string) error
	// GetAllViewedPageIDs returns an id-only projection of every viewed page.
	GetAllViewedPageIDs(ctx context.Context) ([]string, error)
	// DeleteByPageID deletes the view record for a page.
	DeleteByPageID(ctx context.Context, pageID string) error
	// DeleteAll deletes every view record.
	DeleteAll(ctx context.Context) error
}

// PageViewRepo provides methods for page view operations.
// It implements the PageViewStore interface.
type PageViewRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewPageViewRepo creates a new PageViewRepo.
func NewPageViewRepo(db *sql.DB) *PageViewRepo {
	return &PageViewRepo{db: db, now: time.Now}
}

// GetAll returns every page view, most recently viewed first.
func (r *PageViewRepo) GetAll(ctx context.Context) ([]*PageView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT page_id, first_viewed_at, last_viewed_at, view_count
		 FROM page_views ORDER BY last_viewed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query page views: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	views := []*PageView{}
	for rows.Next() {
		var v PageView
		if err := rows.Scan(&v.PageID, &v.FirstViewedAt, &v.LastViewedAt, &v.ViewCount); err != nil {
			return nil, fmt.Errorf("failed to scan page view: %w", err)
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

// GetByPageID returns the view record for a page, or ErrNotFound.
func (r *PageViewRepo) GetByPageID(ctx context.Context, pageID string) (*PageView, error) {
	var v PageView
	err := r.db.QueryRowContext(ctx,
		`SELECT page_id, first_viewed_at, last_viewed_at, view_count
		 FROM page_views WHERE page_id = ?`, pageID).
		Scan(&v.PageID, &v.FirstViewedAt, &v.LastViewedAt, &v.ViewCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query page view: %w", err)
	}
	return &v, nil
}

// RecordView upserts a view: count 1 on first view, increment afterwards.
// firstViewedAt never changes once set.
func (r *PageViewRepo) RecordView(ctx context.Context, pageID string) error {
	if pageID == "" {
		return fmt.Errorf("page id is required")
	}
	now := r.now().UnixMilli()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO page_views (page_id, first_viewed_at, last_viewed_at, view_count)
		 VALUES (?, ?, ?, 1)
		 ON CONFLICT (page_id) DO UPDATE SET
		 view_count = view_count + 1, last_viewed_at = excluded.last_viewed_at`,
		pageID, now, now)
	if err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}
	return nil
}

// GetAllViewedPageIDs returns the ids of every viewed page.
func (r *PageViewRepo) GetAllViewedPageIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT page_id FROM page_views")
	if err != nil {
		return nil, fmt.Errorf("failed to query viewed page ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan page id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteByPageID deletes the view record for a page.
func (r *PageViewRepo) DeleteByPageID(ctx context.Context, pageID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM page_views WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("failed to delete page view: %w", err)
	}
	return nil
}

// DeleteAll deletes every view record.
func (r *PageViewRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM page_views"); err != nil {
		return fmt.Errorf("failed to delete page views: %w", err)
	}
	return nil
}
