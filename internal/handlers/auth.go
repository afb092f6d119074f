package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wikigen/internal/auth"
)

// SessionCookieName carries the auth token for browser clients. API clients
// may use a Bearer header instead.
const SessionCookieName = "wiki_session"

// AuthHandler handles login, logout, and session checks.
type AuthHandler struct {
	gate auth.Gate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gate auth.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// TokenFromRequest extracts the session token from the Authorization header or
// the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// Login exchanges an invitation code for a session token, returned in the body
// and set as a cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Missing invitation code")
		return
	}

	token, err := h.gate.Login(req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

// Logout invalidates the caller's session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := TokenFromRequest(r); token != "" {
		h.gate.Logout(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Check reports whether the caller holds a live session.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ok := h.gate.Check(TokenFromRequest(r))
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": ok})
}
