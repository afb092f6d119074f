package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wikigen/internal/contextutil"
	"wikigen/internal/engine"
	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

// DBHeaderName selects the tenant store for a request. An absent header means
// the default store.
const DBHeaderName = "X-Database-Name"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// tenantStore resolves the request's tenant store from the database header.
func tenantStore(registry *tenant.Registry, r *http.Request) (*storage.Store, error) {
	name := strings.TrimSpace(r.Header.Get(DBHeaderName))
	return registry.Get(name)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// handleError maps domain errors to HTTP status codes.
func handleError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *engine.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, tenant.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrProtected):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, tenant.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, engine.ErrPollTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
