// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

// ProgressStore is the interface for persisting and retrieving reading
// progress. Implementations may use SQL, KV storage, or in-memory
// structures.
//
// SaveProgress is a full overwrite of the record (last-write-wins, no
// merge); callers construct the complete updated record before saving.
// Loads return (nil, nil) when no record exists.
type ProgressStore interface {
	// Progress records, one per (user, book)
	LoadProgress(userID, bookID string) (*ReadingProgress, error)
	SaveProgress(*ReadingProgress) error
	ListProgress(userID string) ([]*ReadingProgress, error)

	// Session history, append-only per (user, book)
	LoadSessionHistory(userID, bookID string) ([]*ReadingSession, error)
	AppendSession(*ReadingSession) error

	// In-flight session, at most one per (user, book); lets an
	// interrupted session be resumed by a later process.
	LoadActiveSession(userID, bookID string) (*ReadingSession, error)
	SaveActiveSession(*ReadingSession) error
	ClearActiveSession(userID, bookID string) error
}
