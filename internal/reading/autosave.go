// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"sync"
	"time"
)

// AutoSaveScheduler fires a flush callback on a fixed interval while a
// session is active. It is owned by the SessionManager and must be
// stopped on every exit path; Stop is idempotent so teardown and End
// may both call it.
type AutoSaveScheduler struct {
	interval time.Duration
	tick     func()
	done     chan struct{}
	stopOnce sync.Once
}

func newAutoSaveScheduler(interval time.Duration, tick func()) *AutoSaveScheduler {
	return &AutoSaveScheduler{
		interval: interval,
		tick:     tick,
		done:     make(chan struct{}),
	}
}

// Start launches the timer goroutine.
func (s *AutoSaveScheduler) Start() {
	go s.run()
}

func (s *AutoSaveScheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.done:
			return
		}
	}
}

// Stop cancels the scheduler. Safe to call more than once.
func (s *AutoSaveScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}
