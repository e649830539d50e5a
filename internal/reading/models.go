// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"time"
)

// BookType represents the kind of book a progress record tracks.
type BookType string

const (
	BookTypeEbook BookType = "ebook" // paginated text
	BookTypeAudio BookType = "audio" // audiobook
	BookTypeBoth  BookType = "both"  // bundle with both renditions
)

// ReadingStatus represents how far along a reader is with a book.
// Status only advances forward, except the explicit abandoned exit
// reachable from reading.
type ReadingStatus string

const (
	StatusNotStarted ReadingStatus = "not-started"
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
	StatusAbandoned  ReadingStatus = "abandoned"
)

// ReadingProgress is the persisted summary of one reader's position and
// cumulative statistics for one book. One record per (user, book).
type ReadingProgress struct {
	ID       string   `json:"id" yaml:"id"`
	UserID   string   `json:"user_id" yaml:"user_id"`
	BookID   string   `json:"book_id" yaml:"book_id"`
	BookType BookType `json:"book_type" yaml:"book_type"`

	// Ebook position.
	CurrentPage  int `json:"current_page,omitempty" yaml:"current_page,omitempty"`
	TotalPages   int `json:"total_pages,omitempty" yaml:"total_pages,omitempty"`
	ChapterIndex int `json:"chapter_index,omitempty" yaml:"chapter_index,omitempty"`

	// Audio position, in seconds.
	CurrentTime         float64 `json:"current_time,omitempty" yaml:"current_time,omitempty"`
	TotalDuration       float64 `json:"total_duration,omitempty" yaml:"total_duration,omitempty"`
	CurrentChapterIndex int     `json:"current_chapter_index,omitempty" yaml:"current_chapter_index,omitempty"`

	// ProgressPercentage is always clamped to [0,100].
	ProgressPercentage float64       `json:"progress_percentage" yaml:"progress_percentage"`
	Status             ReadingStatus `json:"status" yaml:"status"`

	// ReadingTime is cumulative minutes across completed sessions.
	// Monotonically non-decreasing, as is SessionCount.
	ReadingTime  int `json:"reading_time" yaml:"reading_time"`
	SessionCount int `json:"session_count" yaml:"session_count"`

	FirstReadDate time.Time `json:"first_read_date,omitempty" yaml:"first_read_date,omitempty"` // immutable once set
	LastReadDate  time.Time `json:"last_read_date,omitempty" yaml:"last_read_date,omitempty"`   // updated on every write
	CompletedDate time.Time `json:"completed_date,omitempty" yaml:"completed_date,omitempty"`   // set once, never cleared

	// EstimatedTimeLeft is minutes remaining, 0 when unknown.
	EstimatedTimeLeft int `json:"estimated_time_left,omitempty" yaml:"estimated_time_left,omitempty"`

	Bookmarks []Bookmark `json:"bookmarks,omitempty" yaml:"bookmarks,omitempty"`
	Notes     []Note     `json:"notes,omitempty" yaml:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy safe to hand to callers.
func (p *ReadingProgress) Clone() *ReadingProgress {
	if p == nil {
		return nil
	}
	out := *p
	out.Bookmarks = append([]Bookmark(nil), p.Bookmarks...)
	out.Notes = append([]Note(nil), p.Notes...)
	return &out
}

// ReadingSession is one continuous interval of active reading or
// listening, bounded by start and end. At most one session per progress
// record is active (zero EndTime) at a time.
type ReadingSession struct {
	ID         string `json:"id" yaml:"id"`
	ProgressID string `json:"progress_id" yaml:"progress_id"`
	UserID     string `json:"user_id" yaml:"user_id"`
	BookID     string `json:"book_id" yaml:"book_id"`

	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"` // zero while active

	// Duration is minutes, recomputed from StartTime on every update.
	Duration int `json:"duration" yaml:"duration"`

	StartPosition float64 `json:"start_position" yaml:"start_position"`
	EndPosition   float64 `json:"end_position" yaml:"end_position"`
	PagesRead     int     `json:"pages_read,omitempty" yaml:"pages_read,omitempty"`

	Device string `json:"device,omitempty" yaml:"device,omitempty"`
	Agent  string `json:"agent,omitempty" yaml:"agent,omitempty"`
}

// Active reports whether the session has not ended yet.
func (s *ReadingSession) Active() bool {
	return s != nil && s.EndTime.IsZero()
}

// Clone returns a copy safe to hand to callers.
func (s *ReadingSession) Clone() *ReadingSession {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// BookmarkType distinguishes reader-placed bookmarks from generated ones.
type BookmarkType string

const (
	BookmarkManual BookmarkType = "manual"
	BookmarkAuto   BookmarkType = "auto-generated"
)

// Bookmark marks a position in a book. Immutable once created except by
// explicit delete.
type Bookmark struct {
	ID          string       `json:"id" yaml:"id"`
	ProgressID  string       `json:"progress_id" yaml:"progress_id"`
	Position    float64      `json:"position" yaml:"position"` // page number or time offset
	Title       string       `json:"title" yaml:"title"`
	Note        string       `json:"note,omitempty" yaml:"note,omitempty"`
	Type        BookmarkType `json:"type" yaml:"type"`
	CreatedDate time.Time    `json:"created_date" yaml:"created_date"`
}

// Note is reader-authored text attached to a position.
type Note struct {
	ID              string    `json:"id" yaml:"id"`
	ProgressID      string    `json:"progress_id" yaml:"progress_id"`
	Position        float64   `json:"position" yaml:"position"`
	Content         string    `json:"content" yaml:"content"`
	HighlightedText string    `json:"highlighted_text,omitempty" yaml:"highlighted_text,omitempty"`
	CreatedDate     time.Time `json:"created_date" yaml:"created_date"`
	UpdatedDate     time.Time `json:"updated_date,omitempty" yaml:"updated_date,omitempty"`
}
