package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

// PagesHandler handles HTTP requests for wiki pages.
type PagesHandler struct {
	registry *tenant.Registry
	markdown goldmark.Markdown
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(registry *tenant.Registry) *PagesHandler {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	return &PagesHandler{registry: registry, markdown: md}
}

// Get returns one page by path id or ?id=, matches for ?q=, or every page
// newest first.
func (h *PagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if id != "" {
		page, err := store.Pages.GetByID(ctx, id)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch page")
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		pages, err := store.Pages.Search(ctx, q)
		if err != nil {
			handleError(w, ctx, err, "Failed to search pages")
			return
		}
		writeJSON(w, http.StatusOK, pages)
		return
	}

	pages, err := store.Pages.GetAll(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch pages")
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// Render serves a page's markdown content rendered as HTML.
func (h *PagesHandler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	page, err := store.Pages.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch page")
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(page.Content), &buf); err != nil {
		handleError(w, ctx, err, "Failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Save upserts a page by id.
func (h *PagesHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var page storage.Page
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if page.ID == "" || page.Title == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if err := store.Pages.Save(ctx, &page); err != nil {
		handleError(w, ctx, err, "Failed to save page")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "page": page})
}

// Deduplicate sweeps duplicate titles, keeping the newest page per normalized
// title, and reports how many were removed.
func (h *PagesHandler) Deduplicate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	removed, err := store.Pages.RemoveDuplicates(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to remove duplicate pages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// Delete removes one page by ?id= (cascading into the knowledge graph), or
// every page with ?all=true.
func (h *PagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		if err := store.DeletePage(ctx, id); err != nil {
			handleError(w, ctx, err, "Failed to delete page")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if r.URL.Query().Get("all") == "true" {
		if err := store.Pages.DeleteAll(ctx); err != nil {
			handleError(w, ctx, err, "Failed to delete pages")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	writeError(w, http.StatusBadRequest, "Missing id or all parameter")
}
