// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UpdateOptions modify a position update.
type UpdateOptions struct {
	// Background marks the update as autosave-driven; background writes
	// with a position delta under one unit since the last persisted
	// write are kept in memory only.
	Background bool

	// Totals, when known by the surface, are recorded on the progress
	// record and used for the percentage computation.
	TotalPages    int
	TotalDuration float64 // seconds

	// Chapter, when non-nil, updates the type-specific chapter index.
	Chapter *int
}

// SessionManagerConfig configures a SessionManager for one (user, book)
// pair.
type SessionManagerConfig struct {
	Store    ProgressStore
	UserID   string
	BookID   string
	BookType BookType
	Device   string
	Agent    string

	// AutoSaveInterval enables periodic background flushing of the
	// active session when positive.
	AutoSaveInterval time.Duration
}

// SessionManager owns the lifecycle of one reading session per
// (user, book): Idle until Start, Active until End. All triggers —
// surface updates, autosave ticks, flush on teardown — serialize
// through its mutex. It assumes a single writer per process; a second
// concurrent writer for the same pair clobbers via last-write-wins.
type SessionManager struct {
	mu sync.Mutex

	store    ProgressStore
	userID   string
	bookID   string
	bookType BookType
	device   string
	agent    string
	interval time.Duration

	progress *ReadingProgress
	session  *ReadingSession
	autosave *AutoSaveScheduler

	// lastSaved is the position at the last persisted write, used to
	// throttle background saves.
	lastSaved float64

	now func() time.Time
}

// NewSessionManager creates a manager. Call Load before any operation.
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	bt := cfg.BookType
	if bt == "" {
		bt = BookTypeEbook
	}
	return &SessionManager{
		store:    cfg.Store,
		userID:   cfg.UserID,
		bookID:   cfg.BookID,
		bookType: bt,
		device:   cfg.Device,
		agent:    cfg.Agent,
		interval: cfg.AutoSaveInterval,
		now:      time.Now,
	}
}

// Load fetches the progress record for the pair, creating a fresh
// not-started record when none exists or the stored one cannot be
// decoded — reading must remain possible even if tracking degrades.
// An interrupted session left active by a previous process is resumed.
// With no user, Load and every subsequent operation are no-ops.
func (m *SessionManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userID == "" || m.bookID == "" {
		return nil
	}

	p, err := m.store.LoadProgress(m.userID, m.bookID)
	if err != nil {
		log.Printf("arc-reading: load progress for %s/%s: %v (starting fresh)", m.userID, m.bookID, err)
		p = nil
	}
	if p == nil {
		now := m.now()
		p = &ReadingProgress{
			ID:        uuid.New().String(),
			UserID:    m.userID,
			BookID:    m.bookID,
			BookType:  m.bookType,
			Status:    StatusNotStarted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.store.SaveProgress(p); err != nil {
			log.Printf("arc-reading: save fresh progress: %v", err)
		}
	}
	if p.BookType == "" {
		p.BookType = m.bookType
	}
	m.progress = p
	m.bookType = p.BookType

	sess, err := m.store.LoadActiveSession(m.userID, m.bookID)
	if err != nil {
		log.Printf("arc-reading: load active session: %v", err)
		sess = nil
	}
	if sess.Active() {
		m.session = sess
		m.lastSaved = sess.EndPosition
		m.startAutosaveLocked()
	}
	return nil
}

// Start begins a new session at the given position. A no-op when a
// session is already active for this record, or the record is absent.
func (m *SessionManager) Start(initialPosition float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.progress == nil || m.session != nil {
		return
	}

	now := m.now()
	sess := &ReadingSession{
		ID:            uuid.New().String(),
		ProgressID:    m.progress.ID,
		UserID:        m.userID,
		BookID:        m.bookID,
		StartTime:     now,
		StartPosition: initialPosition,
		EndPosition:   initialPosition,
		Device:        m.device,
		Agent:         m.agent,
	}

	if m.progress.FirstReadDate.IsZero() {
		m.progress.FirstReadDate = now
	}
	m.progress.UpdatedAt = now

	m.session = sess
	m.lastSaved = initialPosition

	if err := m.store.SaveProgress(m.progress); err != nil {
		log.Printf("arc-reading: save progress on start: %v", err)
	}
	if err := m.store.SaveActiveSession(sess); err != nil {
		log.Printf("arc-reading: save active session: %v", err)
	}

	m.startAutosaveLocked()
}

// Update records a new position on the active session and recomputes
// the derived fields on the progress record. A no-op when Idle.
// Background updates whose position moved less than one unit (page or
// second) since the last persisted write are not persisted.
func (m *SessionManager) Update(position float64, opts UpdateOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.progress == nil || m.session == nil {
		return
	}

	p := m.progress
	now := m.now()

	if opts.TotalPages > 0 {
		p.TotalPages = opts.TotalPages
	}
	if opts.TotalDuration > 0 {
		p.TotalDuration = opts.TotalDuration
	}

	p.ProgressPercentage = ComputePercentage(position, m.totalFor(p), p.ProgressPercentage)
	p.Status = NextStatus(p.ProgressPercentage, p.Status)
	if p.Status == StatusCompleted {
		// Completed is terminal; re-reading or scrubbing back only moves
		// the position.
		p.ProgressPercentage = 100
		if p.CompletedDate.IsZero() {
			p.CompletedDate = now
		}
	}

	m.applyPosition(p, position, opts.Chapter)

	m.session.EndPosition = position
	m.session.Duration = SessionDurationMinutes(m.session.StartTime, now)

	if eta, ok := EstimatedTimeLeft(p.ProgressPercentage, p.ReadingTime+m.session.Duration); ok {
		p.EstimatedTimeLeft = eta
	}

	p.LastReadDate = now
	p.UpdatedAt = now

	if opts.Background && math.Abs(position-m.lastSaved) < 1 {
		return
	}
	m.persistLocked(position)
}

// End finalizes the active session: accumulates its duration into the
// record, appends it to the session history, and returns to Idle.
// Calling End with no active session is a safe no-op.
func (m *SessionManager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.progress == nil || m.session == nil {
		return
	}

	now := m.now()
	sess := m.session
	sess.EndTime = now
	sess.Duration = SessionDurationMinutes(sess.StartTime, now)
	if m.bookType != BookTypeAudio {
		if pages := int(sess.EndPosition - sess.StartPosition); pages > 0 {
			sess.PagesRead = pages
		}
	}

	p := m.progress
	p.SessionCount++
	p.ReadingTime += sess.Duration
	p.LastReadDate = now
	p.UpdatedAt = now

	if err := m.store.SaveProgress(p); err != nil {
		log.Printf("arc-reading: save progress on end: %v", err)
	}
	if err := m.store.AppendSession(sess); err != nil {
		log.Printf("arc-reading: append session: %v", err)
	}
	if err := m.store.ClearActiveSession(m.userID, m.bookID); err != nil {
		log.Printf("arc-reading: clear active session: %v", err)
	}

	m.stopAutosaveLocked()
	m.session = nil
	m.lastSaved = 0
}

// Flush persists the current progress and in-flight session without
// ending the session. Best-effort: the caller may be torn down before
// a later End can run, and trailing seconds may still be lost.
func (m *SessionManager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.progress == nil || m.session == nil {
		return
	}
	m.persistLocked(m.session.EndPosition)
}

// Close releases the manager's timer without ending the session; the
// in-flight session stays resumable by a later Load. Safe to call after
// End.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.persistLocked(m.session.EndPosition)
	}
	m.stopAutosaveLocked()
}

// Abandon marks the book abandoned. Only reachable from reading; any
// active session is ended first.
func (m *SessionManager) Abandon() {
	m.mu.Lock()
	active := m.session != nil
	m.mu.Unlock()
	if active {
		m.End()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progress == nil || !CanAbandon(m.progress.Status) {
		return
	}
	now := m.now()
	m.progress.Status = StatusAbandoned
	m.progress.LastReadDate = now
	m.progress.UpdatedAt = now
	if err := m.store.SaveProgress(m.progress); err != nil {
		log.Printf("arc-reading: save progress on abandon: %v", err)
	}
}

// Progress returns a copy of the loaded record, or nil before Load.
func (m *SessionManager) Progress() *ReadingProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress.Clone()
}

// ActiveSession returns a copy of the in-flight session, or nil when
// Idle.
func (m *SessionManager) ActiveSession() *ReadingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Stats aggregates the record and the in-flight session into
// reader-facing statistics.
func (m *SessionManager) Stats() ReadingStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ComputeReadingStats(m.progress, m.session, m.now())
}

// Bookmarks returns the bookmark/note manager sharing this record.
func (m *SessionManager) Bookmarks() *BookmarkNoteManager {
	return &BookmarkNoteManager{m: m}
}

// persistLocked writes the record and in-flight session; callers hold
// the mutex. Write failures keep the in-memory state and are logged,
// not retried.
func (m *SessionManager) persistLocked(position float64) {
	if err := m.store.SaveProgress(m.progress); err != nil {
		log.Printf("arc-reading: save progress: %v", err)
		return
	}
	if m.session != nil {
		if err := m.store.SaveActiveSession(m.session); err != nil {
			log.Printf("arc-reading: save active session: %v", err)
			return
		}
	}
	m.lastSaved = position
}

func (m *SessionManager) totalFor(p *ReadingProgress) float64 {
	switch m.bookType {
	case BookTypeAudio:
		return p.TotalDuration
	case BookTypeBoth:
		if p.TotalPages > 0 {
			return float64(p.TotalPages)
		}
		return p.TotalDuration
	default:
		return float64(p.TotalPages)
	}
}

func (m *SessionManager) applyPosition(p *ReadingProgress, position float64, chapter *int) {
	switch m.bookType {
	case BookTypeAudio:
		p.CurrentTime = position
		if chapter != nil {
			p.CurrentChapterIndex = *chapter
		}
	case BookTypeBoth:
		if p.TotalPages > 0 {
			p.CurrentPage = int(position)
			if chapter != nil {
				p.ChapterIndex = *chapter
			}
		} else {
			p.CurrentTime = position
			if chapter != nil {
				p.CurrentChapterIndex = *chapter
			}
		}
	default:
		p.CurrentPage = int(position)
		if chapter != nil {
			p.ChapterIndex = *chapter
		}
	}
}

func (m *SessionManager) startAutosaveLocked() {
	if m.interval <= 0 || m.autosave != nil {
		return
	}
	m.autosave = newAutoSaveScheduler(m.interval, m.autosaveTick)
	m.autosave.Start()
}

func (m *SessionManager) stopAutosaveLocked() {
	if m.autosave != nil {
		m.autosave.Stop()
		m.autosave = nil
	}
}

func (m *SessionManager) autosaveTick() {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return
	}
	pos := m.session.EndPosition
	m.mu.Unlock()

	m.Update(pos, UpdateOptions{Background: true})
}
