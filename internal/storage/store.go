package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Store bundles the per-entity repositories of one tenant database.
type Store struct {
	db *sql.DB

	Pages     PageStore
	Sessions  SessionStore
	Bookmarks BookmarkStore
	Nodes     NodeStore
	Views     PageViewStore
	Jobs      JobStore
}

// NewStore opens the database at path, runs migrations and wires the
// repositories.
func NewStore(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:        db,
		Pages:     NewPageRepo(db),
		Sessions:  NewSessionRepo(db),
		Bookmarks: NewBookmarkRepo(db),
		Nodes:     NewNodeRepo(db),
		Views:     NewPageViewRepo(db),
		Jobs:      NewJobRepo(db),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreatedAt returns the time the store's schema was first initialized.
func (s *Store) CreatedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", createdAtKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query store creation time: %w", err)
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse store creation time: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// DeletePage removes a page and cascades into the knowledge graph: the page's
// node is deleted and its id is stripped from the parent's children list. The
// whole cascade runs in one transaction.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM wiki_pages WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	var parent sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT parent FROM knowledge_nodes WHERE id = ?", id).Scan(&parent)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to query node parent: %w", err)
	}
	if err == nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM knowledge_nodes WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete node: %w", err)
		}
		if parent.Valid {
			if err := stripChild(ctx, tx, parent.String, id); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	return nil
}

func stripChild(ctx context.Context, tx *sql.Tx, parentID, childID string) error {
	var raw string
	err := tx.QueryRowContext(ctx,
		"SELECT children FROM knowledge_nodes WHERE id = ?", parentID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query parent node: %w", err)
	}

	var children []string
	if err := json.Unmarshal([]byte(raw), &children); err != nil {
		return fmt.Errorf("failed to decode parent children: %w", err)
	}
	children = slices.DeleteFunc(children, func(id string) bool { return id == childID })

	updated, err := json.Marshal(children)
	if err != nil {
		return fmt.Errorf("failed to encode parent children: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE knowledge_nodes SET children = ? WHERE id = ?",
		string(updated), parentID); err != nil {
		return fmt.Errorf("failed to update parent node: %w", err)
	}
	return nil
}
