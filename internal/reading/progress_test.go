// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"testing"
	"time"
)

func TestComputePercentage(t *testing.T) {
	// Normal case
	if got := ComputePercentage(50, 200, 0); got != 25 {
		t.Fatalf("ComputePercentage(50, 200): got %v, want 25", got)
	}

	// Clamped above 100
	if got := ComputePercentage(250, 200, 0); got != 100 {
		t.Fatalf("ComputePercentage(250, 200): got %v, want 100", got)
	}

	// Clamped below 0
	if got := ComputePercentage(-10, 200, 0); got != 0 {
		t.Fatalf("ComputePercentage(-10, 200): got %v, want 0", got)
	}

	// Unknown total keeps the previous value
	if got := ComputePercentage(50, 0, 37.5); got != 37.5 {
		t.Fatalf("ComputePercentage with zero total: got %v, want 37.5", got)
	}
	if got := ComputePercentage(50, -1, 12); got != 12 {
		t.Fatalf("ComputePercentage with negative total: got %v, want 12", got)
	}
}

func TestNextStatus(t *testing.T) {
	// First movement starts reading
	if got := NextStatus(1, StatusNotStarted); got != StatusReading {
		t.Fatalf("NextStatus(1, not-started): got %v, want reading", got)
	}

	// No movement stays not-started
	if got := NextStatus(0, StatusNotStarted); got != StatusNotStarted {
		t.Fatalf("NextStatus(0, not-started): got %v, want not-started", got)
	}

	// Reaching 100 completes
	if got := NextStatus(100, StatusReading); got != StatusCompleted {
		t.Fatalf("NextStatus(100, reading): got %v, want completed", got)
	}

	// Completed is terminal even when the position drops back
	if got := NextStatus(50, StatusCompleted); got != StatusCompleted {
		t.Fatalf("NextStatus(50, completed): got %v, want completed", got)
	}

	// Abandoned does not resurrect from a percentage alone
	if got := NextStatus(60, StatusAbandoned); got != StatusAbandoned {
		t.Fatalf("NextStatus(60, abandoned): got %v, want abandoned", got)
	}
}

func TestCanAbandon(t *testing.T) {
	if !CanAbandon(StatusReading) {
		t.Fatal("reading should be abandonable")
	}
	for _, s := range []ReadingStatus{StatusNotStarted, StatusCompleted, StatusAbandoned} {
		if CanAbandon(s) {
			t.Fatalf("%v should not be abandonable", s)
		}
	}
}

func TestEstimatedTimeLeft(t *testing.T) {
	// 25% in 30 minutes: 75% left at 25/30 pct-per-minute = 90 minutes
	eta, ok := EstimatedTimeLeft(25, 30)
	if !ok {
		t.Fatal("estimate should be available at 25%")
	}
	if eta != 90 {
		t.Fatalf("EstimatedTimeLeft(25, 30): got %d, want 90", eta)
	}

	// Too early to estimate
	if _, ok := EstimatedTimeLeft(5, 30); ok {
		t.Fatal("no estimate at 5% or below")
	}
	if _, ok := EstimatedTimeLeft(3, 30); ok {
		t.Fatal("no estimate below the threshold")
	}

	// No reading time recorded yet
	if _, ok := EstimatedTimeLeft(50, 0); ok {
		t.Fatal("no estimate without reading time")
	}
}

func TestSessionDurationMinutes(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if got := SessionDurationMinutes(start, start.Add(45*time.Minute)); got != 45 {
		t.Fatalf("45 minute session: got %d", got)
	}

	// Sub-minute sessions truncate to zero
	if got := SessionDurationMinutes(start, start.Add(59*time.Second)); got != 0 {
		t.Fatalf("59 second session: got %d, want 0", got)
	}

	// Clock skew never yields a negative duration
	if got := SessionDurationMinutes(start, start.Add(-10*time.Minute)); got != 0 {
		t.Fatalf("backwards clock: got %d, want 0", got)
	}
}
