package handlers

import (
	"encoding/json"
	"net/http"

	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

// SessionsHandler handles HTTP requests for learning sessions.
type SessionsHandler struct {
	registry *tenant.Registry
}

// NewSessionsHandler creates a new SessionsHandler.
func NewSessionsHandler(registry *tenant.Registry) *SessionsHandler {
	return &SessionsHandler{registry: registry}
}

// Get returns one session by ?id=, the current session id with ?current=true,
// or every session newest first.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if r.URL.Query().Get("current") == "true" {
		id, err := store.Sessions.GetCurrent(ctx)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch current session")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"currentSessionId": id})
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		session, err := store.Sessions.GetByID(ctx, id)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch session")
			return
		}
		writeJSON(w, http.StatusOK, session)
		return
	}

	sessions, err := store.Sessions.GetAll(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Save upserts a session and marks it as the current one. Breadcrumbs are
// normalized on write.
func (h *SessionsHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var session storage.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if session.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing session id")
		return
	}

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if err := store.Sessions.Save(ctx, &session); err != nil {
		handleError(w, ctx, err, "Failed to save session")
		return
	}
	if err := store.Sessions.SetCurrent(ctx, session.ID); err != nil {
		handleError(w, ctx, err, "Failed to set current session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": session})
}

// Delete removes every session and clears the current-session pointer.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if err := store.Sessions.DeleteAll(ctx); err != nil {
		handleError(w, ctx, err, "Failed to delete sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
