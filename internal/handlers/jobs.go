package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wikigen/internal/engine"
	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

// JobsHandler handles HTTP requests for generation jobs.
type JobsHandler struct {
	registry *tenant.Registry
	engine   *engine.Engine
	poller   engine.Poller
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(registry *tenant.Registry, eng *engine.Engine, poller engine.Poller) *JobsHandler {
	return &JobsHandler{registry: registry, engine: eng, poller: poller}
}

// CreateJobRequest represents the HTTP request payload for job creation.
type CreateJobRequest struct {
	Type  storage.JobType  `json:"type"`
	Input storage.JobInput `json:"input"`
}

// Create submits a new generation job: the job is persisted pending and its
// dispatch starts in the background. Clients poll for the outcome.
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "Missing type or input")
		return
	}

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	job, err := h.engine.Submit(ctx, store, req.Type, req.Input)
	if err != nil {
		handleError(w, ctx, err, "Failed to create job")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// Get returns one job by path id or ?id=, or all jobs newest first.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		job, err := store.Jobs.GetByID(ctx, id)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch job")
			return
		}
		writeJSON(w, http.StatusOK, job)
		return
	}

	jobs, err := store.Jobs.GetAll(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Process dispatches a job by id. Completed jobs are returned as-is without
// re-running generation; a job that is already processing yields a conflict.
func (h *JobsHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	job, err := h.engine.Process(ctx, store, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, ctx, err, "Failed to process job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Wait blocks through the polling contract and returns the terminal job. A
// generation failure surfaces as 502 with the recorded error; expiry of the
// polling deadline is 504 and leaves the job untouched.
func (h *JobsHandler) Wait(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	job, err := h.poller.Wait(ctx, store.Jobs, chi.URLParam(r, "id"))
	if err != nil {
		var failed *engine.JobFailedError
		if errors.As(err, &failed) {
			writeError(w, http.StatusBadGateway, failed.Error())
			return
		}
		handleError(w, ctx, err, "Failed to wait for job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Delete removes one job by ?id=, or every job.
func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		if err := store.Jobs.DeleteByID(ctx, id); err != nil {
			handleError(w, ctx, err, "Failed to delete job")
			return
		}
	} else if err := store.Jobs.DeleteAll(ctx); err != nil {
		handleError(w, ctx, err, "Failed to delete jobs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
