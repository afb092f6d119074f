package storage

import (
	"context"
	"testing"
)

func TestBookmarkRepo_AddAndGetAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, b := range []*Bookmark{
		{PageID: "p1", Title: "First", Timestamp: 100},
		{PageID: "p2", Title: "Second", Timestamp: 300},
		{PageID: "p3", Title: "Third", Timestamp: 200},
	} {
		if err := store.Bookmarks.Add(ctx, b); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	bookmarks, err := store.Bookmarks.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(bookmarks) != 3 {
		t.Fatalf("GetAll() count = %d, want 3", len(bookmarks))
	}
	if bookmarks[0].PageID != "p2" {
		t.Errorf("GetAll() first = %s, want p2 (most recent)", bookmarks[0].PageID)
	}
}

func TestBookmarkRepo_Add_FirstWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Bookmarks.Add(ctx, &Bookmark{PageID: "p1", Title: "Original", Timestamp: 100}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	// Re-adding the same page keeps the original entry
	if err := store.Bookmarks.Add(ctx, &Bookmark{PageID: "p1", Title: "Changed", Timestamp: 999}); err != nil {
		t.Fatalf("Add() re-add error = %v", err)
	}

	bookmarks, err := store.Bookmarks.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("GetAll() count = %d, want 1", len(bookmarks))
	}
	if bookmarks[0].Title != "Original" || bookmarks[0].Timestamp != 100 {
		t.Errorf("GetAll()[0] = %+v, want original entry", bookmarks[0])
	}
}

func TestBookmarkRepo_Remove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Bookmarks.Add(ctx, &Bookmark{PageID: "p1", Title: "A", Timestamp: 1}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Bookmarks.Remove(ctx, "p1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	// Removing an absent bookmark is not an error
	if err := store.Bookmarks.Remove(ctx, "p1"); err != nil {
		t.Fatalf("Remove() absent error = %v", err)
	}

	bookmarks, err := store.Bookmarks.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(bookmarks) != 0 {
		t.Errorf("GetAll() count = %d, want 0", len(bookmarks))
	}
}
