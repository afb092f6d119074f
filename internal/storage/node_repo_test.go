package storage

import (
	"context"
	"testing"
)

func TestNodeRepo_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	node := &KnowledgeNode{
		ID:       "go-1",
		Title:    "Go",
		Children: []string{"channels-2", "goroutines-3"},
		Parent:   "programming-0",
		Depth:    1,
	}
	if err := store.Nodes.Save(ctx, node); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Nodes.GetByID(ctx, "go-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Go" || got.Parent != "programming-0" || got.Depth != 1 {
		t.Errorf("GetByID() = %+v, want %+v", got, node)
	}
	if len(got.Children) != 2 {
		t.Errorf("GetByID() children = %v", got.Children)
	}
}

func TestNodeRepo_GetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Nodes.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestNodeRepo_SaveAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	nodes := []*KnowledgeNode{
		{ID: "root", Title: "Root", Children: []string{"child"}, Depth: 0},
		{ID: "child", Title: "Child", Children: []string{}, Parent: "root", Depth: 1},
	}
	if err := store.Nodes.SaveAll(ctx, nodes); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	all, err := store.Nodes.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("GetAll() count = %d, want 2", len(all))
	}
}

func TestNodeRepo_SaveAll_Empty(t *testing.T) {
	store := newTestStore(t)

	if err := store.Nodes.SaveAll(context.Background(), nil); err != nil {
		t.Errorf("SaveAll(nil) error = %v", err)
	}
}

func TestNodeRepo_Save_Replaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Nodes.Save(ctx, &KnowledgeNode{ID: "n1", Title: "Old", Children: []string{}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Nodes.Save(ctx, &KnowledgeNode{ID: "n1", Title: "New", Children: []string{"c1"}}); err != nil {
		t.Fatalf("Save() replace error = %v", err)
	}

	got, err := store.Nodes.GetByID(ctx, "n1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "New" || len(got.Children) != 1 {
		t.Errorf("GetByID() after replace = %+v", got)
	}
}

func TestNodeRepo_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, n := range []*KnowledgeNode{
		{ID: "a", Title: "A", Children: []string{}},
		{ID: "b", Title: "B", Children: []string{}},
	} {
		if err := store.Nodes.Save(ctx, n); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if err := store.Nodes.DeleteByID(ctx, "a"); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}
	if _, err := store.Nodes.GetByID(ctx, "a"); err != ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := store.Nodes.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	all, err := store.Nodes.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("GetAll() count = %d, want 0", len(all))
	}
}
