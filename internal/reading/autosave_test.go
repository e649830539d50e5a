// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"testing"
	"time"
)

func TestAutoSaveSchedulerTicks(t *testing.T) {
	fired := make(chan struct{}, 8)
	s := newAutoSaveScheduler(5*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler never ticked")
	}
}

func TestAutoSaveSchedulerStopIsIdempotent(t *testing.T) {
	s := newAutoSaveScheduler(time.Hour, func() {})
	s.Start()

	// A double Stop must not panic or block
	s.Stop()
	s.Stop()
}

func TestAutoSaveStopsTicking(t *testing.T) {
	fired := make(chan struct{}, 8)
	s := newAutoSaveScheduler(5*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	s.Start()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler never ticked")
	}
	s.Stop()

	// Drain anything in flight, then expect silence
	time.Sleep(20 * time.Millisecond)
	for len(fired) > 0 {
		<-fired
	}
	select {
	case <-fired:
		t.Fatal("tick after Stop")
	case <-time.After(30 * time.Millisecond):
	}
}
