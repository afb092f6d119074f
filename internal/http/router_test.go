package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"wikigen/internal/auth"
	"wikigen/internal/engine"
	"wikigen/internal/generator/mocks"
	"wikigen/internal/tenant"
)

func newTestDeps(t *testing.T, gate auth.Gate) *Deps {
	t.Helper()

	registry, err := tenant.NewRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	t.Cleanup(func() { _ = registry.Close() })

	ctrl := gomock.NewController(t)
	gen := mocks.NewMockService(ctrl)

	return &Deps{
		Registry: registry,
		Engine:   engine.New(gen, time.Minute),
		Poller:   engine.NewPoller(10*time.Millisecond, time.Second),
		Gate:     gate,
	}
}

func TestNewRouter_Routes(t *testing.T) {
	router := NewRouter(newTestDeps(t, nil))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: nethttp.MethodGet, path: "/health", wantStatus: nethttp.StatusOK},
		{name: "list pages", method: nethttp.MethodGet, path: "/api/pages", wantStatus: nethttp.StatusOK},
		{name: "list sessions", method: nethttp.MethodGet, path: "/api/sessions", wantStatus: nethttp.StatusOK},
		{name: "list bookmarks", method: nethttp.MethodGet, path: "/api/bookmarks", wantStatus: nethttp.StatusOK},
		{name: "list page views", method: nethttp.MethodGet, path: "/api/page-views", wantStatus: nethttp.StatusOK},
		{name: "list mindmap", method: nethttp.MethodGet, path: "/api/mindmap", wantStatus: nethttp.StatusOK},
		{name: "list jobs", method: nethttp.MethodGet, path: "/api/jobs", wantStatus: nethttp.StatusOK},
		{name: "list databases", method: nethttp.MethodGet, path: "/api/databases", wantStatus: nethttp.StatusOK},
		{name: "missing page", method: nethttp.MethodGet, path: "/api/pages/nope", wantStatus: nethttp.StatusNotFound},
		{name: "unknown route", method: nethttp.MethodGet, path: "/api/nothing", wantStatus: nethttp.StatusNotFound},
		{name: "method not allowed", method: nethttp.MethodPut, path: "/api/pages", wantStatus: nethttp.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestNewRouter_OpenWithoutGate(t *testing.T) {
	router := NewRouter(newTestDeps(t, nil))

	// No gate means no auth wall and no auth routes.
	req := httptest.NewRequest(nethttp.MethodGet, "/api/pages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusOK {
		t.Errorf("GET /api/pages status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/api/auth/check", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusNotFound {
		t.Errorf("GET /api/auth/check status = %d, want 404", rec.Code)
	}
}

func TestNewRouter_GateGuardsAPI(t *testing.T) {
	gate := auth.NewCodeGate([]string{"CODE"}, time.Minute)
	router := NewRouter(newTestDeps(t, gate))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/pages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusUnauthorized {
		t.Errorf("unauthenticated GET /api/pages status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}

	token, err := gate.Login("CODE")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	req = httptest.NewRequest(nethttp.MethodGet, "/api/pages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusOK {
		t.Errorf("authenticated GET /api/pages status = %d, want 200", rec.Code)
	}
}

func TestNewRouter_CORSApplied(t *testing.T) {
	router := NewRouter(newTestDeps(t, nil))

	req := httptest.NewRequest(nethttp.MethodOptions, "/api/pages", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
