// Package debounce provides a small scheduler that coalesces rapid
// successive triggers into at most one callback per quiet interval.
package debounce

import (
	"sync"
	"time"
)

// Scheduler delays a callback until a full quiet interval has elapsed
// with no further Schedule calls. Each Schedule replaces any pending
// callback, so a burst of triggers fires exactly once, with the function
// supplied by the last trigger in the burst.
//
// The callback runs on a timer goroutine; callers that need single-
// threaded execution should make the callback post a message into their
// own event loop rather than mutate state directly.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
}

// New returns a Scheduler with the given quiet interval.
func New(interval time.Duration) *Scheduler {
	return &Scheduler{interval: interval}
}

// Interval returns the configured quiet interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Schedule cancels any pending callback and arms fn to run after the
// quiet interval.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, fn)
}

// Now cancels any pending callback and runs fn synchronously. This is
// the explicit-action path: it must not leave a debounced duplicate
// behind.
func (s *Scheduler) Now(fn func()) {
	s.Cancel()
	fn()
}

// Cancel drops any pending callback. A canceled callback never fires.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
