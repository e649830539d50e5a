// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"fmt"

	"github.com/google/uuid"
)

// BookmarkNoteManager provides bookmark and note CRUD over the progress
// record owned by a SessionManager. Edits are delete+recreate; there is
// no update operation for bookmarks.
type BookmarkNoteManager struct {
	m *SessionManager
}

// AddBookmark appends a manual bookmark at the given position and
// persists the record. Returns the created bookmark, or nil when no
// record is loaded.
func (b *BookmarkNoteManager) AddBookmark(position float64, title, note string) (*Bookmark, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	p := b.m.progress
	if p == nil {
		return nil, nil
	}

	bm := Bookmark{
		ID:          uuid.New().String(),
		ProgressID:  p.ID,
		Position:    position,
		Title:       title,
		Note:        note,
		Type:        BookmarkManual,
		CreatedDate: b.m.now(),
	}
	p.Bookmarks = append(p.Bookmarks, bm)
	p.LastReadDate = bm.CreatedDate
	p.UpdatedAt = bm.CreatedDate

	if err := b.m.store.SaveProgress(p); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return &bm, nil
}

// RemoveBookmark filters the bookmark out by id and persists the
// record. Removing an unknown id is a no-op, not an error.
func (b *BookmarkNoteManager) RemoveBookmark(id string) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	p := b.m.progress
	if p == nil {
		return nil
	}

	kept := p.Bookmarks[:0]
	for _, bm := range p.Bookmarks {
		if bm.ID != id {
			kept = append(kept, bm)
		}
	}
	if len(kept) == len(p.Bookmarks) {
		return nil
	}
	p.Bookmarks = kept
	p.UpdatedAt = b.m.now()

	if err := b.m.store.SaveProgress(p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// AddNote appends a note at the given position and persists the record.
func (b *BookmarkNoteManager) AddNote(position float64, content, highlightedText string) (*Note, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	p := b.m.progress
	if p == nil {
		return nil, nil
	}

	n := Note{
		ID:              uuid.New().String(),
		ProgressID:      p.ID,
		Position:        position,
		Content:         content,
		HighlightedText: highlightedText,
		CreatedDate:     b.m.now(),
	}
	p.Notes = append(p.Notes, n)
	p.LastReadDate = n.CreatedDate
	p.UpdatedAt = n.CreatedDate

	if err := b.m.store.SaveProgress(p); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return &n, nil
}

// RemoveNote filters the note out by id and persists the record.
// Idempotent like RemoveBookmark.
func (b *BookmarkNoteManager) RemoveNote(id string) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	p := b.m.progress
	if p == nil {
		return nil
	}

	kept := p.Notes[:0]
	for _, n := range p.Notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(p.Notes) {
		return nil
	}
	p.Notes = kept
	p.UpdatedAt = b.m.now()

	if err := b.m.store.SaveProgress(p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// ListBookmarks returns a copy of the record's bookmarks.
func (b *BookmarkNoteManager) ListBookmarks() []Bookmark {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if b.m.progress == nil {
		return nil
	}
	return append([]Bookmark(nil), b.m.progress.Bookmarks...)
}

// ListNotes returns a copy of the record's notes.
func (b *BookmarkNoteManager) ListNotes() []Note {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if b.m.progress == nil {
		return nil
	}
	return append([]Note(nil), b.m.progress.Notes...)
}
