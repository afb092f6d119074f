package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

func pagesRouter(registry *tenant.Registry) http.Handler {
	h := NewPagesHandler(registry)
	r := chi.NewRouter()
	r.Get("/api/pages", h.Get)
	r.Post("/api/pages", h.Save)
	r.Delete("/api/pages", h.Delete)
	r.Post("/api/pages/deduplicate", h.Deduplicate)
	r.Get("/api/pages/{id}", h.Get)
	r.Get("/api/pages/{id}/html", h.Render)
	return r
}

func TestPagesHandler_SaveAndGet(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	page := storage.Page{
		ID:      "go-1",
		Title:   "Go",
		Content: "# Go",
	}
	w := doJSON(t, router, http.MethodPost, "/api/pages", page)
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/pages/go-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	got := decodeBody[storage.Page](t, w)
	if got.Title != "Go" {
		t.Errorf("GET page = %+v", got)
	}
}

func TestPagesHandler_Save_Validation(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing id", body: storage.Page{Title: "T"}},
		{name: "missing title", body: storage.Page{ID: "x"}},
		{name: "malformed json", body: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.body == nil {
				req := httptest.NewRequest(http.MethodPost, "/api/pages", strings.NewReader("{broken"))
				w = httptest.NewRecorder()
				router.ServeHTTP(w, req)
			} else {
				w = doJSON(t, router, http.MethodPost, "/api/pages", tt.body)
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestPagesHandler_Get_NotFound(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	w := doJSON(t, router, http.MethodGet, "/api/pages/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPagesHandler_TenantHeader(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	// Write into the "work" tenant only
	req := httptest.NewRequest(http.MethodPost, "/api/pages",
		strings.NewReader(`{"id":"p1","title":"Work Page","content":"c"}`))
	req.Header.Set(DBHeaderName, "work")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d", w.Code)
	}

	// The default tenant does not see it
	w = doJSON(t, router, http.MethodGet, "/api/pages/p1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("default tenant status = %d, want 404", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/pages/p1", nil)
	req.Header.Set(DBHeaderName, "work")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("work tenant status = %d, want 200", w.Code)
	}
}

func TestPagesHandler_InvalidTenant(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	req.Header.Set(DBHeaderName, "../escape")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid database name", w.Code)
	}
}

func TestPagesHandler_Search(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	for _, p := range []storage.Page{
		{ID: "go", Title: "Go Language", Content: "compiled"},
		{ID: "py", Title: "Python", Content: "interpreted"},
	} {
		if w := doJSON(t, router, http.MethodPost, "/api/pages", p); w.Code != http.StatusOK {
			t.Fatalf("POST status = %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/pages?q=language", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	got := decodeBody[[]storage.Page](t, w)
	if len(got) != 1 || got[0].ID != "go" {
		t.Errorf("search result = %+v", got)
	}
}

func TestPagesHandler_Render(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	page := storage.Page{ID: "go-1", Title: "Go", Content: "# Go\n\nSome **bold** text."}
	if w := doJSON(t, router, http.MethodPost, "/api/pages", page); w.Code != http.StatusOK {
		t.Fatalf("POST status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/pages/go-1/html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "<strong>bold</strong>") {
		t.Errorf("rendered HTML = %q", body)
	}
}

func TestPagesHandler_Deduplicate(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	for _, p := range []storage.Page{
		{ID: "cats-old", Title: "Cats", Content: "c", CreatedAt: 1},
		{ID: "cats-new", Title: " cats ", Content: "c", CreatedAt: 5},
		{ID: "dogs", Title: "Dogs", Content: "c", CreatedAt: 2},
	} {
		if w := doJSON(t, router, http.MethodPost, "/api/pages", p); w.Code != http.StatusOK {
			t.Fatalf("POST status = %d", w.Code)
		}
	}

	w := doJSON(t, router, http.MethodPost, "/api/pages/deduplicate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d", w.Code)
	}
	got := decodeBody[map[string]int](t, w)
	if got["removed"] != 1 {
		t.Errorf("removed = %d, want 1", got["removed"])
	}
}

func TestPagesHandler_Delete(t *testing.T) {
	registry := newTestRegistry(t)
	router := pagesRouter(registry)

	store, err := registry.Get("")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	ctx := context.Background()
	if err := store.Pages.Save(ctx, &storage.Page{ID: "p1", Title: "P", CreatedAt: 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Nodes.Save(ctx, &storage.KnowledgeNode{ID: "p1", Title: "P", Children: []string{}}); err != nil {
		t.Fatalf("Save(node) error = %v", err)
	}

	w := doJSON(t, router, http.MethodDelete, "/api/pages?id=p1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", w.Code)
	}

	// The graph node went with the page
	if _, err := store.Nodes.GetByID(ctx, "p1"); err != storage.ErrNotFound {
		t.Errorf("node after delete error = %v, want ErrNotFound", err)
	}

	// Neither id nor all was given
	w = doJSON(t, router, http.MethodDelete, "/api/pages", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("DELETE without params status = %d, want 400", w.Code)
	}
}
