// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"context"
	"testing"
	"time"

	"github.com/mtreilly/arc-reading/internal/store"
)

func newMemProgressStore(t *testing.T) *KVStore {
	t.Helper()
	s, err := NewKVStore(store.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestManager(t *testing.T, ps ProgressStore, bookType BookType) *SessionManager {
	t.Helper()
	m := NewSessionManager(SessionManagerConfig{
		Store:    ps,
		UserID:   "alice",
		BookID:   "moby-dick",
		BookType: bookType,
		Device:   "test-device",
	})
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

// countingStore counts progress writes to observe save throttling.
type countingStore struct {
	ProgressStore
	saves int
}

func (c *countingStore) SaveProgress(p *ReadingProgress) error {
	c.saves++
	return c.ProgressStore.SaveProgress(p)
}

func TestSessionLifecycle(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	p := m.Progress()
	if p == nil {
		t.Fatal("Load should create a fresh record")
	}
	if p.Status != StatusNotStarted {
		t.Fatalf("fresh record status: got %v, want not-started", p.Status)
	}

	// Start a session at page 10
	m.Start(10)
	sess := m.ActiveSession()
	if sess == nil {
		t.Fatal("no active session after Start")
	}
	if sess.StartPosition != 10 {
		t.Fatalf("start position: got %v, want 10", sess.StartPosition)
	}
	p = m.Progress()
	if p.FirstReadDate.IsZero() {
		t.Fatal("FirstReadDate should be set on first session")
	}

	// Read to page 50 of 200 over 30 minutes
	clock = clock.Add(30 * time.Minute)
	m.Update(50, UpdateOptions{TotalPages: 200})

	p = m.Progress()
	if p.ProgressPercentage != 25 {
		t.Fatalf("percentage: got %v, want 25", p.ProgressPercentage)
	}
	if p.Status != StatusReading {
		t.Fatalf("status: got %v, want reading", p.Status)
	}
	if p.CurrentPage != 50 {
		t.Fatalf("current page: got %d, want 50", p.CurrentPage)
	}
	if p.EstimatedTimeLeft != 90 {
		t.Fatalf("estimated time left: got %d, want 90", p.EstimatedTimeLeft)
	}

	// End the session
	m.End()
	if m.ActiveSession() != nil {
		t.Fatal("session should be cleared after End")
	}
	p = m.Progress()
	if p.SessionCount != 1 {
		t.Fatalf("session count: got %d, want 1", p.SessionCount)
	}
	if p.ReadingTime != 30 {
		t.Fatalf("reading time: got %d, want 30", p.ReadingTime)
	}

	history, err := ps.LoadSessionHistory("alice", "moby-dick")
	if err != nil {
		t.Fatalf("LoadSessionHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length: got %d, want 1", len(history))
	}
	if history[0].PagesRead != 40 {
		t.Fatalf("pages read: got %d, want 40", history[0].PagesRead)
	}
	if history[0].Duration != 30 {
		t.Fatalf("session duration: got %d, want 30", history[0].Duration)
	}
}

func TestAudiobookCompletion(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeAudio)

	clock := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Start(0)
	clock = clock.Add(10 * time.Minute)
	m.Update(1800, UpdateOptions{TotalDuration: 3600})

	p := m.Progress()
	if p.ProgressPercentage != 50 {
		t.Fatalf("percentage: got %v, want 50", p.ProgressPercentage)
	}
	if p.CurrentTime != 1800 {
		t.Fatalf("current time: got %v, want 1800", p.CurrentTime)
	}

	// Listening to the end completes the book
	clock = clock.Add(30 * time.Minute)
	m.Update(3600, UpdateOptions{})

	p = m.Progress()
	if p.Status != StatusCompleted {
		t.Fatalf("status: got %v, want completed", p.Status)
	}
	if p.CompletedDate.IsZero() {
		t.Fatal("CompletedDate should be set")
	}
	completedAt := p.CompletedDate

	// Scrubbing back does not regress completion
	clock = clock.Add(time.Minute)
	m.Update(1200, UpdateOptions{})
	p = m.Progress()
	if p.Status != StatusCompleted {
		t.Fatalf("status after scrub back: got %v, want completed", p.Status)
	}
	if !p.CompletedDate.Equal(completedAt) {
		t.Fatal("CompletedDate should not change once set")
	}
	if p.ProgressPercentage != 100 {
		t.Fatalf("percentage after scrub back: got %v, want 100", p.ProgressPercentage)
	}

	m.End()
	history, _ := ps.LoadSessionHistory("alice", "moby-dick")
	if len(history) != 1 {
		t.Fatalf("history length: got %d, want 1", len(history))
	}
	// Audiobook sessions never record pages
	if history[0].PagesRead != 0 {
		t.Fatalf("audio pages read: got %d, want 0", history[0].PagesRead)
	}
}

func TestDoubleStartKeepsFirstSession(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	m.Start(10)
	first := m.ActiveSession()
	if first == nil {
		t.Fatal("no active session")
	}

	m.Start(99)
	second := m.ActiveSession()
	if second.ID != first.ID {
		t.Fatal("second Start should not replace the active session")
	}
	if second.StartPosition != 10 {
		t.Fatalf("start position: got %v, want 10", second.StartPosition)
	}
}

func TestEndWhenIdleIsNoop(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	m.End()
	p := m.Progress()
	if p.SessionCount != 0 {
		t.Fatalf("session count after idle End: got %d, want 0", p.SessionCount)
	}

	// Update while idle does nothing either
	m.Update(50, UpdateOptions{TotalPages: 200})
	p = m.Progress()
	if p.ProgressPercentage != 0 {
		t.Fatalf("percentage after idle Update: got %v, want 0", p.ProgressPercentage)
	}
}

func TestReadingTimeAccumulates(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		m.Start(float64(i * 10))
		clock = clock.Add(10 * time.Minute)
		m.Update(float64(i*10+10), UpdateOptions{TotalPages: 100})
		m.End()
		clock = clock.Add(time.Hour)
	}

	p := m.Progress()
	if p.SessionCount != 3 {
		t.Fatalf("session count: got %d, want 3", p.SessionCount)
	}
	// Each session contributes exactly once
	if p.ReadingTime != 30 {
		t.Fatalf("reading time: got %d, want 30", p.ReadingTime)
	}
}

func TestBackwardNavigationClamps(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	m.Start(100)
	m.Update(80, UpdateOptions{TotalPages: 200})
	m.End()

	history, _ := ps.LoadSessionHistory("alice", "moby-dick")
	if len(history) != 1 {
		t.Fatalf("history length: got %d, want 1", len(history))
	}
	if history[0].PagesRead != 0 {
		t.Fatalf("pages read going backwards: got %d, want 0", history[0].PagesRead)
	}
}

func TestBackgroundSaveThrottling(t *testing.T) {
	cs := &countingStore{ProgressStore: newMemProgressStore(t)}
	m := NewSessionManager(SessionManagerConfig{
		Store:  cs,
		UserID: "alice",
		BookID: "moby-dick",
	})
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m.Start(100)
	before := cs.saves

	// Sub-unit background movement stays in memory
	m.Update(100.4, UpdateOptions{Background: true})
	m.Update(100.9, UpdateOptions{Background: true})
	if cs.saves != before {
		t.Fatalf("background saves below threshold: got %d extra writes", cs.saves-before)
	}

	// Crossing one unit persists
	m.Update(101.5, UpdateOptions{Background: true})
	if cs.saves != before+1 {
		t.Fatalf("background save above threshold: got %d extra writes, want 1", cs.saves-before)
	}

	// Foreground updates always persist
	m.Update(101.6, UpdateOptions{})
	if cs.saves != before+2 {
		t.Fatalf("foreground save: got %d extra writes, want 2", cs.saves-before)
	}
}

func TestResumeActiveSessionAcrossManagers(t *testing.T) {
	ps := newMemProgressStore(t)

	m1 := newTestManager(t, ps, BookTypeEbook)
	m1.Start(10)
	m1.Update(25, UpdateOptions{TotalPages: 100})
	sessID := m1.ActiveSession().ID
	m1.Close()

	// A new manager picks up the interrupted session
	m2 := newTestManager(t, ps, BookTypeEbook)
	resumed := m2.ActiveSession()
	if resumed == nil {
		t.Fatal("active session should survive Close and reload")
	}
	if resumed.ID != sessID {
		t.Fatalf("resumed session ID: got %s, want %s", resumed.ID, sessID)
	}
	if resumed.EndPosition != 25 {
		t.Fatalf("resumed position: got %v, want 25", resumed.EndPosition)
	}

	m2.End()
	if m2.ActiveSession() != nil {
		t.Fatal("session should end on the resuming manager")
	}
	p := m2.Progress()
	if p.SessionCount != 1 {
		t.Fatalf("session count: got %d, want 1", p.SessionCount)
	}

	// Nothing left to resume
	m3 := newTestManager(t, ps, BookTypeEbook)
	if m3.ActiveSession() != nil {
		t.Fatal("no session should remain after End")
	}
}

func TestFlushKeepsSessionActive(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	m.Start(10)
	m.Update(30, UpdateOptions{TotalPages: 100})
	m.Flush()

	if m.ActiveSession() == nil {
		t.Fatal("Flush should not end the session")
	}
	sess, err := ps.LoadActiveSession("alice", "moby-dick")
	if err != nil {
		t.Fatalf("LoadActiveSession: %v", err)
	}
	if !sess.Active() {
		t.Fatal("persisted session should still be active")
	}
	if sess.EndPosition != 30 {
		t.Fatalf("persisted position: got %v, want 30", sess.EndPosition)
	}

	// A later End still counts the session exactly once
	m.End()
	p := m.Progress()
	if p.SessionCount != 1 {
		t.Fatalf("session count after Flush+End: got %d, want 1", p.SessionCount)
	}
	history, _ := ps.LoadSessionHistory("alice", "moby-dick")
	if len(history) != 1 {
		t.Fatalf("history after Flush+End: got %d, want 1", len(history))
	}
}

func TestAbandon(t *testing.T) {
	ps := newMemProgressStore(t)
	m := newTestManager(t, ps, BookTypeEbook)

	// Not-started books cannot be abandoned
	m.Abandon()
	if got := m.Progress().Status; got != StatusNotStarted {
		t.Fatalf("abandon before reading: got %v, want not-started", got)
	}

	m.Start(0)
	m.Update(20, UpdateOptions{TotalPages: 100})
	m.Abandon()

	p := m.Progress()
	if p.Status != StatusAbandoned {
		t.Fatalf("status: got %v, want abandoned", p.Status)
	}
	if m.ActiveSession() != nil {
		t.Fatal("abandon should end the active session")
	}
	if p.SessionCount != 1 {
		t.Fatalf("session count: got %d, want 1", p.SessionCount)
	}
}

func TestCorruptRecordFallsBackToFresh(t *testing.T) {
	kv := store.NewMemoryStore()
	ps, err := NewKVStore(kv)
	if err != nil {
		t.Fatal(err)
	}

	// Plant a record that cannot be decoded
	key := "arc-reading:progress:alice:moby-dick"
	if err := kv.Set(context.Background(), key, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	m := NewSessionManager(SessionManagerConfig{
		Store:  ps,
		UserID: "alice",
		BookID: "moby-dick",
	})
	if err := m.Load(); err != nil {
		t.Fatalf("Load over corrupt record: %v", err)
	}

	p := m.Progress()
	if p == nil {
		t.Fatal("Load should fall back to a fresh record")
	}
	if p.Status != StatusNotStarted {
		t.Fatalf("fresh record status: got %v, want not-started", p.Status)
	}

	// Reading continues normally
	m.Start(0)
	m.Update(10, UpdateOptions{TotalPages: 100})
	if got := m.Progress().ProgressPercentage; got != 10 {
		t.Fatalf("percentage: got %v, want 10", got)
	}
}

func TestEmptyUserIsNoop(t *testing.T) {
	ps := newMemProgressStore(t)
	m := NewSessionManager(SessionManagerConfig{
		Store:  ps,
		BookID: "moby-dick",
	})
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m.Progress() != nil {
		t.Fatal("no record should be created without a user")
	}

	// Every operation stays a no-op
	m.Start(10)
	m.Update(50, UpdateOptions{TotalPages: 100})
	m.Flush()
	m.End()
	m.Close()
	if m.ActiveSession() != nil {
		t.Fatal("no session without a user")
	}

	records, err := ps.ListProgress("")
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records for empty user: got %d, want 0", len(records))
	}
}
