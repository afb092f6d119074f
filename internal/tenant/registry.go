// Package tenant maps logical database names to isolated sqlite stores.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"wikigen/internal/storage"
)

const (
	// DefaultName is the distinguished store that always exists and can
	// never be deleted.
	DefaultName = "default"

	dbPrefix    = "wiki-"
	dbExtension = ".db"
)

var (
	// ErrInvalidName is returned for tenant names outside [a-zA-Z0-9_-].
	ErrInvalidName = errors.New("invalid database name: only alphanumeric characters, hyphens, and underscores are allowed")
	// ErrProtected is returned when deleting the default store.
	ErrProtected = errors.New("cannot delete the default database")
	// ErrNotFound is returned when the named store does not exist.
	ErrNotFound = errors.New("database not found")
	// ErrExists is returned when creating a store that already exists.
	ErrExists = errors.New("database already exists")
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidName reports whether name is a safe tenant identifier.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// Info describes a tenant store's on-disk state.
type Info struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

type entry struct {
	store    *storage.Store
	lastUsed time.Time
}

// Registry caches open store handles per tenant so a store is opened once and
// reused rather than reopened per call.
type Registry struct {
	dataDir string

	mu     sync.Mutex
	stores map[string]*entry
}

// NewRegistry creates a registry rooted at dataDir, creating the directory if
// needed.
func NewRegistry(dataDir string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Registry{
		dataDir: dataDir,
		stores:  map[string]*entry{},
	}, nil
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.dataDir, dbPrefix+name+dbExtension)
}

// Get returns the store for name, opening and initializing it on first use.
// Concurrent callers for the same unseen name share one open handle.
func (r *Registry) Get(name string) (*storage.Store, error) {
	if name == "" {
		name = DefaultName
	}
	if !ValidName(name) {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.stores[name]; ok {
		e.lastUsed = time.Now()
		return e.store, nil
	}

	store, err := storage.NewStore(r.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open store %q: %w", name, err)
	}
	r.stores[name] = &entry{store: store, lastUsed: time.Now()}
	return store, nil
}

// Peek returns the cached handle for name without refreshing its recency.
// Maintenance passes use it so inspecting a store does not keep its handle
// alive past the idle cutoff.
func (r *Registry) Peek(name string) (*storage.Store, bool) {
	if name == "" {
		name = DefaultName
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.stores[name]
	if !ok {
		return nil, false
	}
	return e.store, true
}

// OpenOnce opens the named store without entering it into the cache. The
// caller owns the returned handle and must close it.
func (r *Registry) OpenOnce(name string) (*storage.Store, error) {
	if name == "" {
		name = DefaultName
	}
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	store, err := storage.NewStore(r.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open store %q: %w", name, err)
	}
	return store, nil
}

// Create initializes a new named store. It returns ErrExists if the store's
// file is already present.
func (r *Registry) Create(name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	if _, err := os.Stat(r.path(name)); err == nil {
		return ErrExists
	}
	if _, err := r.Get(name); err != nil {
		return err
	}
	return nil
}

// Exists reports whether the named store's file is present on disk.
func (r *Registry) Exists(name string) bool {
	if !ValidName(name) {
		return false
	}
	_, err := os.Stat(r.path(name))
	return err == nil
}

// List returns the known tenant names, sorted. The default store is always
// included.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	names := []string{}
	seenDefault := false
	for _, e := range entries {
		n := e.Name()
		if !strings.HasPrefix(n, dbPrefix) || !strings.HasSuffix(n, dbExtension) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(n, dbPrefix), dbExtension)
		if !ValidName(name) {
			continue
		}
		if name == DefaultName {
			seenDefault = true
		}
		names = append(names, name)
	}
	if !seenDefault {
		names = append(names, DefaultName)
	}
	sort.Strings(names)
	return names, nil
}

// Info returns storage metadata for the named store, or ErrNotFound.
func (r *Registry) Info(ctx context.Context, name string) (*Info, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	path := r.path(name)
	stat, err := os.Stat(path)
	if err != nil {
		return nil, ErrNotFound
	}

	info := &Info{
		Name:     name,
		Path:     path,
		Size:     stat.Size(),
		Modified: stat.ModTime(),
	}

	// Creation time is recorded inside the store; stat has no portable birth time.
	store, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if created, err := store.CreatedAt(ctx); err == nil {
		info.Created = created
	} else {
		info.Created = stat.ModTime()
	}
	return info, nil
}

// Delete closes and removes the named store. The default store is protected.
func (r *Registry) Delete(name string) error {
	if name == DefaultName {
		return ErrProtected
	}
	if !ValidName(name) {
		return ErrInvalidName
	}

	r.mu.Lock()
	if e, ok := r.stores[name]; ok {
		_ = e.store.Close()
		delete(r.stores, name)
	}
	r.mu.Unlock()

	path := r.path(name)
	if _, err := os.Stat(path); err != nil {
		return ErrNotFound
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove store file: %w", err)
	}
	// WAL side files are best-effort cleanup
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
	return nil
}

// CloseIdle closes cached handles unused for longer than maxIdle and returns
// how many were closed. The stores reopen lazily on next access. maxIdle must
// exceed the longest operation that can hold a handle, or an in-flight caller
// may see its store closed underneath it; the configuration layer enforces
// this against the generation timeout.
func (r *Registry) CloseIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	cutoff := time.Now().Add(-maxIdle)
	for name, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			_ = e.store.Close()
			delete(r.stores, name)
			closed++
		}
	}
	return closed
}

// Close closes every cached handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, e := range r.stores {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, name)
	}
	return firstErr
}
