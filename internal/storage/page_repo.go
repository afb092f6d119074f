package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_page_store.go -package=mocks wikigen/internal/storage PageStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PageStore defines the interface for wiki page storage operations.
type PageStore interface {
	// GetAll returns every page, newest first.
	GetAll(ctx context.Context) ([]*Page, error)
	// GetByID returns a page by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Page, error)
	// GetPlaceholderByTitle returns a placeholder page whose normalized title
	// matches, or ErrNotFound. Used to reuse ids when regenerating.
	GetPlaceholderByTitle(ctx context.Context, title string) (*Page, error)
	// GetNewestByTitle returns the newest page whose normalized title matches,
	// placeholder or not, or ErrNotFound. Used for forced regeneration.
	GetNewestByTitle(ctx context.Context, title string) (*Page, error)
	// Save inserts a new page or fully replaces an existing one by id.
	Save(ctx context.Context, page *Page) error
	// Search returns pages whose title or content contains the query,
	// case-insensitively, newest first.
	Search(ctx context.Context, query string) ([]*Page, error)
	// RemoveDuplicates keeps only the newest page per normalized title and
	// deletes the rest in a single transaction. Returns the count removed.
	RemoveDuplicates(ctx context.Context) (int, error)
	// DeleteByID deletes a page by id.
	DeleteByID(ctx context.Context, id string) error
	// DeleteAll deletes every page.
	DeleteAll(ctx context.Context) error
}

// PageRepo provides methods for wiki page operations.
// It implements the PageStore interface.
type PageRepo struct {
	db *sql.DB
}

// NewPageRepo creates a new PageRepo.
func NewPageRepo(db *sql.DB) *PageRepo {
	return &PageRepo{db: db}
}

const pageColumns = "id, title, content, related_topics, suggested_questions, created_at, parent_id, is_placeholder, mindmap_position"

func scanPage(scanner interface{ Scan(dest ...any) error }) (*Page, error) {
	var p Page
	var topics, questions string
	var parentID, position sql.NullString
	var placeholder int

	err := scanner.Scan(&p.ID, &p.Title, &p.Content, &topics, &questions,
		&p.CreatedAt, &parentID, &placeholder, &position)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(topics), &p.RelatedTopics); err != nil {
		return nil, fmt.Errorf("failed to decode related topics: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &p.SuggestedQuestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggested questions: %w", err)
	}
	p.ParentID = parentID.String
	p.IsPlaceholder = placeholder == 1
	if position.Valid {
		var pos Position
		if err := json.Unmarshal([]byte(position.String), &pos); err != nil {
			return nil, fmt.Errorf("failed to decode mindmap position: %w", err)
		}
		p.MindmapPosition = &pos
	}
	return &p, nil
}

func collectPages(rows *sql.Rows) ([]*Page, error) {
	defer func() {
		_ = rows.Close()
	}()

	pages := []*Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetAll returns every page, newest first.
func (r *PageRepo) GetAll(ctx context.Context) ([]*Page, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+pageColumns+" FROM wiki_pages ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	return collectPages(rows)
}

// GetByID returns a page by id, or ErrNotFound.
func (r *PageRepo) GetByID(ctx context.Context, id string) (*Page, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM wiki_pages WHERE id = ?", id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	return p, nil
}

// GetPlaceholderByTitle returns a placeholder page matching the normalized
// title, or ErrNotFound.
func (r *PageRepo) GetPlaceholderByTitle(ctx context.Context, title string) (*Page, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+` FROM wiki_pages
		 WHERE is_placeholder = 1 AND LOWER(TRIM(title)) = ?
		 ORDER BY created_at DESC LIMIT 1`,
		strings.ToLower(strings.TrimSpace(title)))
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query placeholder page: %w", err)
	}
	return p, nil
}

// GetNewestByTitle returns the newest page matching the normalized title,
// or ErrNotFound.
func (r *PageRepo) GetNewestByTitle(ctx context.Context, title string) (*Page, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+` FROM wiki_pages
		 WHERE LOWER(TRIM(title)) = ?
		 ORDER BY created_at DESC LIMIT 1`,
		strings.ToLower(strings.TrimSpace(title)))
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query page by title: %w", err)
	}
	return p, nil
}

// Save inserts a new page or fully replaces an existing one by id.
func (r *PageRepo) Save(ctx context.Context, page *Page) error {
	if page.ID == "" {
		return fmt.Errorf("page id is required")
	}
	if page.Title == "" {
		return fmt.Errorf("page title is required")
	}

	topics, err := json.Marshal(emptyIfNil(page.RelatedTopics))
	if err != nil {
		return fmt.Errorf("failed to encode related topics: %w", err)
	}
	questions, err := json.Marshal(emptyIfNil(page.SuggestedQuestions))
	if err != nil {
		return fmt.Errorf("failed to encode suggested questions: %w", err)
	}

	var parentID any
	if page.ParentID != "" {
		parentID = page.ParentID
	}
	var position any
	if page.MindmapPosition != nil {
		raw, err := json.Marshal(page.MindmapPosition)
		if err != nil {
			return fmt.Errorf("failed to encode mindmap position: %w", err)
		}
		position = string(raw)
	}

	placeholder := 0
	if page.IsPlaceholder {
		placeholder = 1
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO wiki_pages
		 (id, title, content, related_topics, suggested_questions, created_at, parent_id, is_placeholder, mindmap_position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.ID, page.Title, page.Content, string(topics), string(questions),
		page.CreatedAt, parentID, placeholder, position)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// Search returns pages whose title or content contains the query, newest first.
func (r *PageRepo) Search(ctx context.Context, query string) ([]*Page, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+pageColumns+` FROM wiki_pages
		 WHERE LOWER(title) LIKE ? OR LOWER(content) LIKE ?
		 ORDER BY created_at DESC`,
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search pages: %w", err)
	}
	return collectPages(rows)
}

// RemoveDuplicates keeps only the newest page per case/whitespace-normalized
// title and deletes the rest. The sweep runs in a single transaction so
// concurrent readers never observe a partial result.
func (r *PageRepo) RemoveDuplicates(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin dedup transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM wiki_pages WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, MAX(created_at) FROM wiki_pages
				GROUP BY LOWER(TRIM(title))
			)
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to remove duplicate pages: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit dedup transaction: %w", err)
	}
	return int(removed), nil
}

// DeleteByID deletes a page by id.
func (r *PageRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM wiki_pages WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}

// DeleteAll deletes every page.
func (r *PageRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM wiki_pages"); err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
