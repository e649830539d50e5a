// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLStore provides persistence for reading progress using SQL.
type SQLStore struct {
	db *sql.DB
}

// OpenDB opens the SQLite database at path.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// NewSQLStore creates a new progress store and initializes the schema.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reading_progress (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		book_type TEXT NOT NULL DEFAULT 'ebook',
		current_page INTEGER DEFAULT 0,
		total_pages INTEGER DEFAULT 0,
		chapter_index INTEGER DEFAULT 0,
		current_time_sec REAL DEFAULT 0,
		total_duration_sec REAL DEFAULT 0,
		current_chapter_index INTEGER DEFAULT 0,
		progress_percentage REAL DEFAULT 0,
		status TEXT DEFAULT 'not-started',
		reading_time INTEGER DEFAULT 0,
		session_count INTEGER DEFAULT 0,
		first_read_date DATETIME,
		last_read_date DATETIME,
		completed_date DATETIME,
		estimated_time_left INTEGER DEFAULT 0,
		bookmarks TEXT,
		notes TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (user_id, book_id)
	);

	CREATE TABLE IF NOT EXISTS reading_sessions (
		id TEXT PRIMARY KEY,
		progress_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		duration INTEGER DEFAULT 0,
		start_position REAL DEFAULT 0,
		end_position REAL DEFAULT 0,
		pages_read INTEGER DEFAULT 0,
		device TEXT,
		agent TEXT,
		active INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_progress_user ON reading_progress(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_pair ON reading_sessions(user_id, book_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_active ON reading_sessions(user_id, book_id, active);
	`

	_, err := s.db.Exec(schema)
	return err
}

const progressColumns = `id, user_id, book_id, book_type, current_page, total_pages, chapter_index,
	current_time_sec, total_duration_sec, current_chapter_index, progress_percentage, status,
	reading_time, session_count, first_read_date, last_read_date, completed_date,
	estimated_time_left, bookmarks, notes, created_at, updated_at`

// Progress records

func (s *SQLStore) LoadProgress(userID, bookID string) (*ReadingProgress, error) {
	row := s.db.QueryRow(`
		SELECT `+progressColumns+`
		FROM reading_progress WHERE user_id = ? AND book_id = ?
	`, userID, bookID)
	return scanProgress(row)
}

func (s *SQLStore) SaveProgress(p *ReadingProgress) error {
	if p.ID == "" {
		return fmt.Errorf("progress record has no id")
	}
	p.UpdatedAt = time.Now()

	bookmarksJSON, _ := json.Marshal(p.Bookmarks)
	notesJSON, _ := json.Marshal(p.Notes)

	_, err := s.db.Exec(`
		INSERT INTO reading_progress (`+progressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			book_type = excluded.book_type,
			current_page = excluded.current_page,
			total_pages = excluded.total_pages,
			chapter_index = excluded.chapter_index,
			current_time_sec = excluded.current_time_sec,
			total_duration_sec = excluded.total_duration_sec,
			current_chapter_index = excluded.current_chapter_index,
			progress_percentage = excluded.progress_percentage,
			status = excluded.status,
			reading_time = excluded.reading_time,
			session_count = excluded.session_count,
			first_read_date = excluded.first_read_date,
			last_read_date = excluded.last_read_date,
			completed_date = excluded.completed_date,
			estimated_time_left = excluded.estimated_time_left,
			bookmarks = excluded.bookmarks,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, p.ID, p.UserID, p.BookID, p.BookType, p.CurrentPage, p.TotalPages, p.ChapterIndex,
		p.CurrentTime, p.TotalDuration, p.CurrentChapterIndex, p.ProgressPercentage, p.Status,
		p.ReadingTime, p.SessionCount, nullTime(p.FirstReadDate), nullTime(p.LastReadDate),
		nullTime(p.CompletedDate), p.EstimatedTimeLeft, string(bookmarksJSON), string(notesJSON),
		p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *SQLStore) ListProgress(userID string) ([]*ReadingProgress, error) {
	rows, err := s.db.Query(`
		SELECT `+progressColumns+`
		FROM reading_progress WHERE user_id = ?
		ORDER BY last_read_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ReadingProgress
	for rows.Next() {
		p, err := scanProgressRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

// Session history (append-only)

func (s *SQLStore) LoadSessionHistory(userID, bookID string) ([]*ReadingSession, error) {
	rows, err := s.db.Query(`
		SELECT id, progress_id, user_id, book_id, start_time, end_time, duration,
			start_position, end_position, pages_read, device, agent
		FROM reading_sessions
		WHERE user_id = ? AND book_id = ? AND active = 0
		ORDER BY start_time
	`, userID, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*ReadingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLStore) AppendSession(sess *ReadingSession) error {
	return s.insertSession(sess, false)
}

// In-flight session

func (s *SQLStore) LoadActiveSession(userID, bookID string) (*ReadingSession, error) {
	rows, err := s.db.Query(`
		SELECT id, progress_id, user_id, book_id, start_time, end_time, duration,
			start_position, end_position, pages_read, device, agent
		FROM reading_sessions
		WHERE user_id = ? AND book_id = ? AND active = 1
		LIMIT 1
	`, userID, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanSession(rows)
}

func (s *SQLStore) SaveActiveSession(sess *ReadingSession) error {
	return s.insertSession(sess, true)
}

func (s *SQLStore) ClearActiveSession(userID, bookID string) error {
	_, err := s.db.Exec(`
		DELETE FROM reading_sessions WHERE user_id = ? AND book_id = ? AND active = 1
	`, userID, bookID)
	return err
}

func (s *SQLStore) insertSession(sess *ReadingSession, active bool) error {
	activeFlag := 0
	if active {
		activeFlag = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO reading_sessions (id, progress_id, user_id, book_id, start_time, end_time,
			duration, start_position, end_position, pages_read, device, agent, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			end_time = excluded.end_time,
			duration = excluded.duration,
			end_position = excluded.end_position,
			pages_read = excluded.pages_read,
			active = excluded.active
	`, sess.ID, sess.ProgressID, sess.UserID, sess.BookID, sess.StartTime, nullTime(sess.EndTime),
		sess.Duration, sess.StartPosition, sess.EndPosition, sess.PagesRead, sess.Device,
		sess.Agent, activeFlag)
	return err
}

// scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row *sql.Row) (*ReadingProgress, error) {
	p, err := scanProgressFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func scanProgressRows(rows *sql.Rows) (*ReadingProgress, error) {
	return scanProgressFrom(rows)
}

func scanProgressFrom(row rowScanner) (*ReadingProgress, error) {
	var p ReadingProgress
	var bookmarksJSON, notesJSON sql.NullString
	var firstRead, lastRead, completed sql.NullTime

	err := row.Scan(&p.ID, &p.UserID, &p.BookID, &p.BookType, &p.CurrentPage, &p.TotalPages,
		&p.ChapterIndex, &p.CurrentTime, &p.TotalDuration, &p.CurrentChapterIndex,
		&p.ProgressPercentage, &p.Status, &p.ReadingTime, &p.SessionCount,
		&firstRead, &lastRead, &completed, &p.EstimatedTimeLeft,
		&bookmarksJSON, &notesJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if firstRead.Valid {
		p.FirstReadDate = firstRead.Time
	}
	if lastRead.Valid {
		p.LastReadDate = lastRead.Time
	}
	if completed.Valid {
		p.CompletedDate = completed.Time
	}
	if bookmarksJSON.Valid {
		json.Unmarshal([]byte(bookmarksJSON.String), &p.Bookmarks)
	}
	if notesJSON.Valid {
		json.Unmarshal([]byte(notesJSON.String), &p.Notes)
	}

	return &p, nil
}

func scanSession(row rowScanner) (*ReadingSession, error) {
	var sess ReadingSession
	var endTime sql.NullTime
	var device, agent sql.NullString

	err := row.Scan(&sess.ID, &sess.ProgressID, &sess.UserID, &sess.BookID, &sess.StartTime,
		&endTime, &sess.Duration, &sess.StartPosition, &sess.EndPosition, &sess.PagesRead,
		&device, &agent)
	if err != nil {
		return nil, err
	}

	if endTime.Valid {
		sess.EndTime = endTime.Time
	}
	if device.Valid {
		sess.Device = device.String
	}
	if agent.Valid {
		sess.Agent = agent.String
	}

	return &sess, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ ProgressStore = (*SQLStore)(nil)
