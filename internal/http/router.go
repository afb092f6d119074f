package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wikigen/internal/auth"
	"wikigen/internal/engine"
	"wikigen/internal/handlers"
	"wikigen/internal/tenant"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Registry *tenant.Registry
	Engine   *engine.Engine
	Poller   engine.Poller

	// Gate is nil when no invitation codes are configured; the API is then
	// open.
	Gate auth.Gate
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)
	if deps.Gate != nil {
		r.Use(RequireAuth(deps.Gate))
	}

	pages := handlers.NewPagesHandler(deps.Registry)
	sessions := handlers.NewSessionsHandler(deps.Registry)
	bookmarks := handlers.NewBookmarksHandler(deps.Registry)
	views := handlers.NewPageViewsHandler(deps.Registry)
	mindmap := handlers.NewMindmapHandler(deps.Registry)
	jobs := handlers.NewJobsHandler(deps.Registry, deps.Engine, deps.Poller)
	databases := handlers.NewDatabasesHandler(deps.Registry)
	health := handlers.NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		r.Route("/pages", func(r chi.Router) {
			r.Get("/", pages.Get)
			r.Post("/", pages.Save)
			r.Delete("/", pages.Delete)
			r.Post("/deduplicate", pages.Deduplicate)
			r.Get("/{id}", pages.Get)
			r.Get("/{id}/html", pages.Render)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Post("/", sessions.Save)
			r.Delete("/", sessions.Delete)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", bookmarks.Get)
			r.Post("/", bookmarks.Add)
			r.Delete("/", bookmarks.Delete)
		})

		r.Route("/page-views", func(r chi.Router) {
			r.Get("/", views.Get)
			r.Post("/", views.Record)
			r.Delete("/", views.Delete)
		})

		r.Route("/mindmap", func(r chi.Router) {
			r.Get("/", mindmap.Get)
			r.Post("/", mindmap.Save)
			r.Delete("/", mindmap.Delete)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobs.Get)
			r.Post("/", jobs.Create)
			r.Delete("/", jobs.Delete)
			r.Get("/{id}", jobs.Get)
			r.Post("/{id}/process", jobs.Process)
			r.Get("/{id}/wait", jobs.Wait)
		})

		r.Route("/databases", func(r chi.Router) {
			r.Get("/", databases.List)
			r.Post("/", databases.Create)
			r.Delete("/{name}", databases.Delete)
		})

		if deps.Gate != nil {
			authHandler := handlers.NewAuthHandler(deps.Gate)
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
				r.Get("/check", authHandler.Check)
			})
		}
	})

	r.Get("/health", health.Check)

	return r
}
