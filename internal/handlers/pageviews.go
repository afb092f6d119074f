package handlers

import (
	"encoding/json"
	"net/http"

	"wikigen/internal/tenant"
)

// PageViewsHandler handles HTTP requests for page view accounting.
type PageViewsHandler struct {
	registry *tenant.Registry
}

// NewPageViewsHandler creates a new PageViewsHandler.
func NewPageViewsHandler(registry *tenant.Registry) *PageViewsHandler {
	return &PageViewsHandler{registry: registry}
}

// Get returns a single view record by ?pageId=, just the viewed ids with
// ?idsOnly=true, or every view record.
func (h *PageViewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if pageID := r.URL.Query().Get("pageId"); pageID != "" {
		view, err := store.Views.GetByPageID(ctx, pageID)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch page view")
			return
		}
		writeJSON(w, http.StatusOK, view)
		return
	}

	if r.URL.Query().Get("idsOnly") == "true" {
		ids, err := store.Views.GetAllViewedPageIDs(ctx)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch viewed page ids")
			return
		}
		writeJSON(w, http.StatusOK, ids)
		return
	}

	views, err := store.Views.GetAll(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch page views")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Record registers one view of a page. The first view creates the record;
// later views bump the count and last-viewed time only.
func (h *PageViewsHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		PageID string `json:"pageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PageID == "" {
		writeError(w, http.StatusBadRequest, "Missing pageId")
		return
	}

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if err := store.Views.RecordView(ctx, req.PageID); err != nil {
		handleError(w, ctx, err, "Failed to record page view")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Delete removes one view record by ?pageId=, or every record.
func (h *PageViewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if pageID := r.URL.Query().Get("pageId"); pageID != "" {
		if err := store.Views.DeleteByPageID(ctx, pageID); err != nil {
			handleError(w, ctx, err, "Failed to delete page view")
			return
		}
	} else if err := store.Views.DeleteAll(ctx); err != nil {
		handleError(w, ctx, err, "Failed to delete page views")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
