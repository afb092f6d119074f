// Package graph maintains the knowledge tree mirroring page ancestry.
package graph

import (
	"context"
	"errors"
	"slices"

	"wikigen/internal/storage"
)

// Record links a generated page into the knowledge tree. With a known parent
// it fetches only that parent's node, appends the child id exactly once, and
// persists child and parent together in one batch write; without a parent it
// creates a root node. The full graph is never loaded.
func Record(ctx context.Context, nodes storage.NodeStore, page *storage.Page) error {
	node := &storage.KnowledgeNode{
		ID:       page.ID,
		Title:    page.Title,
		Children: []string{},
		Depth:    0,
	}

	// A regenerated page keeps its node's existing links.
	if existing, err := nodes.GetByID(ctx, page.ID); err == nil {
		node.Children = existing.Children
		node.Parent = existing.Parent
		node.Depth = existing.Depth
		return nodes.Save(ctx, node)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if page.ParentID == "" {
		return nodes.SaveAll(ctx, []*storage.KnowledgeNode{node})
	}

	parent, err := nodes.GetByID(ctx, page.ParentID)
	if errors.Is(err, storage.ErrNotFound) {
		// Parent page predates the graph; treat the new node as a root.
		return nodes.SaveAll(ctx, []*storage.KnowledgeNode{node})
	}
	if err != nil {
		return err
	}

	node.Parent = parent.ID
	node.Depth = parent.Depth + 1
	if !slices.Contains(parent.Children, node.ID) {
		parent.Children = append(parent.Children, node.ID)
	}
	return nodes.SaveAll(ctx, []*storage.KnowledgeNode{node, parent})
}
