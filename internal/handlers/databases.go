package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wikigen/internal/tenant"
)

// DatabasesHandler handles HTTP requests for tenant database management.
type DatabasesHandler struct {
	registry *tenant.Registry
}

// NewDatabasesHandler creates a new DatabasesHandler.
func NewDatabasesHandler(registry *tenant.Registry) *DatabasesHandler {
	return &DatabasesHandler{registry: registry}
}

// List returns metadata for every known database, default included.
func (h *DatabasesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names, err := h.registry.List()
	if err != nil {
		handleError(w, ctx, err, "Failed to list databases")
		return
	}

	infos := make([]*tenant.Info, 0, len(names))
	for _, name := range names {
		info, err := h.registry.Info(ctx, name)
		if err != nil {
			// The default store may not have a file yet.
			info = &tenant.Info{Name: name}
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

// Create initializes a new named database.
func (h *DatabasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Missing database name")
		return
	}

	if err := h.registry.Create(req.Name); err != nil {
		handleError(w, ctx, err, "Failed to create database")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "name": req.Name})
}

// Delete removes a named database and its file. The default database is
// protected.
func (h *DatabasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := chi.URLParam(r, "name")
	if name == "" {
		name = r.URL.Query().Get("name")
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "Missing database name")
		return
	}

	if err := h.registry.Delete(name); err != nil {
		handleError(w, ctx, err, "Failed to delete database")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
