package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

// BookmarksHandler handles HTTP requests for bookmarks.
type BookmarksHandler struct {
	registry *tenant.Registry
}

// NewBookmarksHandler creates a new BookmarksHandler.
func NewBookmarksHandler(registry *tenant.Registry) *BookmarksHandler {
	return &BookmarksHandler{registry: registry}
}

// Get returns every bookmark, most recent first.
func (h *BookmarksHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	bookmarks, err := store.Bookmarks.GetAll(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

// Add pins a page. Re-adding an existing bookmark keeps the original entry.
func (h *BookmarksHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var bookmark storage.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&bookmark); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if bookmark.PageID == "" || bookmark.Title == "" {
		writeError(w, http.StatusBadRequest, "Missing pageId or title")
		return
	}
	if bookmark.Timestamp == 0 {
		bookmark.Timestamp = time.Now().UnixMilli()
	}

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if err := store.Bookmarks.Add(ctx, &bookmark); err != nil {
		handleError(w, ctx, err, "Failed to add bookmark")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Delete removes one bookmark by ?pageId=, or every bookmark.
func (h *BookmarksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if pageID := r.URL.Query().Get("pageId"); pageID != "" {
		if err := store.Bookmarks.Remove(ctx, pageID); err != nil {
			handleError(w, ctx, err, "Failed to remove bookmark")
			return
		}
	} else if err := store.Bookmarks.DeleteAll(ctx); err != nil {
		handleError(w, ctx, err, "Failed to delete bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
