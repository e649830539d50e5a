// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"testing"
)

func TestBookmarkCRUD(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)
	bn := m.Bookmarks()

	// Add a bookmark
	bm, err := bn.AddBookmark(42, "Chapter 3", "the whale appears")
	if err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}
	if bm == nil {
		t.Fatal("AddBookmark returned nil")
	}
	if bm.ID == "" {
		t.Error("bookmark ID should be generated")
	}
	if bm.Type != BookmarkManual {
		t.Fatalf("bookmark type: got %v, want manual", bm.Type)
	}

	// Survives a reload through a fresh manager
	m2 := newTestManager(t, ps, BookTypeEbook)
	marks := m2.Bookmarks().ListBookmarks()
	if len(marks) != 1 {
		t.Fatalf("bookmarks after reload: got %d, want 1", len(marks))
	}
	if marks[0].Position != 42 {
		t.Fatalf("position: got %v, want 42", marks[0].Position)
	}
	if marks[0].Title != "Chapter 3" {
		t.Fatalf("title: got %q", marks[0].Title)
	}

	// Remove it
	if err := bn.RemoveBookmark(bm.ID); err != nil {
		t.Fatalf("RemoveBookmark: %v", err)
	}
	if got := len(bn.ListBookmarks()); got != 0 {
		t.Fatalf("bookmarks after remove: got %d, want 0", got)
	}

	// Removing again is a no-op
	if err := bn.RemoveBookmark(bm.ID); err != nil {
		t.Fatalf("RemoveBookmark twice: %v", err)
	}
	if err := bn.RemoveBookmark("no-such-id"); err != nil {
		t.Fatalf("RemoveBookmark unknown id: %v", err)
	}
}

func TestNoteCRUD(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)
	bn := m.Bookmarks()

	n, err := bn.AddNote(120, "great metaphor here", "Call me Ishmael")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if n == nil || n.ID == "" {
		t.Fatal("AddNote should return a note with an ID")
	}

	notes := bn.ListNotes()
	if len(notes) != 1 {
		t.Fatalf("notes: got %d, want 1", len(notes))
	}
	if notes[0].HighlightedText != "Call me Ishmael" {
		t.Fatalf("highlighted text: got %q", notes[0].HighlightedText)
	}

	if err := bn.RemoveNote(n.ID); err != nil {
		t.Fatalf("RemoveNote: %v", err)
	}
	if got := len(bn.ListNotes()); got != 0 {
		t.Fatalf("notes after remove: got %d, want 0", got)
	}

	// Idempotent
	if err := bn.RemoveNote(n.ID); err != nil {
		t.Fatalf("RemoveNote twice: %v", err)
	}
}

func TestBookmarksDuringActiveSession(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	m.Start(10)
	m.Update(30, UpdateOptions{TotalPages: 100})

	// Adding a bookmark does not disturb the session
	if _, err := m.Bookmarks().AddBookmark(30, "", ""); err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}
	if m.ActiveSession() == nil {
		t.Fatal("session should stay active")
	}

	m.End()
	p := m.Progress()
	if len(p.Bookmarks) != 1 {
		t.Fatalf("bookmarks on record: got %d, want 1", len(p.Bookmarks))
	}
	if p.SessionCount != 1 {
		t.Fatalf("session count: got %d, want 1", p.SessionCount)
	}
}

func TestBookmarksWithoutRecord(t *testing.T) {
	ps := newMemProgressStore(t)
	m := NewSessionManager(SessionManagerConfig{Store: ps, BookID: "moby-dick"})
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	bn := m.Bookmarks()

	bm, err := bn.AddBookmark(10, "", "")
	if err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}
	if bm != nil {
		t.Fatal("no bookmark without a loaded record")
	}
	if err := bn.RemoveBookmark("x"); err != nil {
		t.Fatalf("RemoveBookmark: %v", err)
	}
	if bn.ListBookmarks() != nil {
		t.Fatal("no bookmarks without a loaded record")
	}
}
