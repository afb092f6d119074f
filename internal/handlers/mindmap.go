package handlers

import (
	"encoding/json"
	"net/http"

	"wikigen/internal/storage"
	"wikigen/internal/tenant"
)

// MindmapHandler handles HTTP requests for knowledge graph nodes.
type MindmapHandler struct {
	registry *tenant.Registry
}

// NewMindmapHandler creates a new MindmapHandler.
func NewMindmapHandler(registry *tenant.Registry) *MindmapHandler {
	return &MindmapHandler{registry: registry}
}

// Get returns one node by ?id=, or the whole graph.
func (h *MindmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		node, err := store.Nodes.GetByID(ctx, id)
		if err != nil {
			handleError(w, ctx, err, "Failed to fetch node")
			return
		}
		writeJSON(w, http.StatusOK, node)
		return
	}

	nodes, err := store.Nodes.GetAll(ctx)
	if err != nil {
		handleError(w, ctx, err, "Failed to fetch nodes")
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// saveNodesRequest accepts either a single node or a batch.
type saveNodesRequest struct {
	storage.KnowledgeNode
	Nodes []*storage.KnowledgeNode `json:"nodes"`
}

// Save upserts one node, or a batch under {"nodes": [...]}. A batch is written
// atomically.
func (h *MindmapHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if len(req.Nodes) > 0 {
		for _, n := range req.Nodes {
			if n.ID == "" {
				writeError(w, http.StatusBadRequest, "Node missing id")
				return
			}
		}
		if err := store.Nodes.SaveAll(ctx, req.Nodes); err != nil {
			handleError(w, ctx, err, "Failed to save nodes")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing node id")
		return
	}
	if err := store.Nodes.Save(ctx, &req.KnowledgeNode); err != nil {
		handleError(w, ctx, err, "Failed to save node")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Delete removes one node by ?id=, or the whole graph.
func (h *MindmapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := tenantStore(h.registry, r)
	if err != nil {
		handleError(w, ctx, err, "Failed to open database")
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		if err := store.Nodes.DeleteByID(ctx, id); err != nil {
			handleError(w, ctx, err, "Failed to delete node")
			return
		}
	} else if err := store.Nodes.DeleteAll(ctx); err != nil {
		handleError(w, ctx, err, "Failed to delete nodes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
