package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SessionStore defines the interface for learning session storage operations.
type SessionStore interface {
	// GetAll returns every session, newest first.
	GetAll(ctx context.Context) ([]*Session, error)
	// GetByID returns a session by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Session, error)
	// Save inserts or replaces a session. Breadcrumbs are normalized before
	// persisting: consecutive repeats collapse and the trail is capped.
	Save(ctx context.Context, session *Session) error
	// GetCurrent returns the id of the current session, or "" if unset.
	GetCurrent(ctx context.Context) (string, error)
	// SetCurrent stores the current session pointer.
	SetCurrent(ctx context.Context, sessionID string) error
	// DeleteAll deletes every session and clears the current pointer.
	DeleteAll(ctx context.Context) error
}

// SessionRepo provides methods for learning session operations.
// It implements the SessionStore interface.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

const currentSessionKey = "current_session"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var s Session
	var pages, breadcrumbs string

	err := scanner.Scan(&s.ID, &s.Name, &s.StartedAt, &pages, &s.CurrentPageID, &breadcrumbs)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(pages), &s.Pages); err != nil {
		return nil, fmt.Errorf("failed to decode session pages: %w", err)
	}
	if err := json.Unmarshal([]byte(breadcrumbs), &s.Breadcrumbs); err != nil {
		return nil, fmt.Errorf("failed to decode session breadcrumbs: %w", err)
	}
	return &s, nil
}

// GetAll returns every session, newest first.
func (r *SessionRepo) GetAll(ctx context.Context) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, started_at, pages, current_page_id, breadcrumbs
		 FROM learning_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sessions := []*Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetByID returns a session by id, or ErrNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, started_at, pages, current_page_id, breadcrumbs
		 FROM learning_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// Save inserts or replaces a session, normalizing its breadcrumb trail first.
func (r *SessionRepo) Save(ctx context.Context, session *Session) error {
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}

	session.Breadcrumbs = NormalizeBreadcrumbs(session.Breadcrumbs)

	pages, err := json.Marshal(emptyIfNil(session.Pages))
	if err != nil {
		return fmt.Errorf("failed to encode session pages: %w", err)
	}
	breadcrumbs, err := json.Marshal(session.Breadcrumbs)
	if err != nil {
		return fmt.Errorf("failed to encode session breadcrumbs: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO learning_sessions
		 (id, name, started_at, pages, current_page_id, breadcrumbs)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.Name, session.StartedAt, string(pages),
		session.CurrentPageID, string(breadcrumbs))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetCurrent returns the id of the current session, or "" if unset.
func (r *SessionRepo) GetCurrent(ctx context.Context) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", currentSessionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query current session: %w", err)
	}
	return value, nil
}

// SetCurrent stores the current session pointer.
func (r *SessionRepo) SetCurrent(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)",
		currentSessionKey, sessionID)
	if err != nil {
		return fmt.Errorf("failed to set current session: %w", err)
	}
	return nil
}

// DeleteAll deletes every session and clears the current pointer.
func (r *SessionRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM learning_sessions"); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM app_state WHERE key = ?", currentSessionKey); err != nil {
		return fmt.Errorf("failed to clear current session: %w", err)
	}
	return nil
}
