// Package routestate holds the latest confirmed route along with the
// loading flag and error message, and enforces the version gate that
// keeps out-of-order network completions from clobbering newer results.
package routestate

import "github.com/kass/go-route-map/pkg/models"

// Store is the single source of truth for route rendering.
//
// Every dispatch calls Begin and captures the returned version; every
// completion hands that version back through Resolve or Fail. A
// completion whose version is no longer the latest is discarded without
// touching any field, so application order follows issue order rather
// than network completion order.
//
// Store carries no lock: it is intended to be mutated from a single
// event loop (the UI's update loop, or the test goroutine). The version
// gate, not mutual exclusion, is the ordering mechanism.
type Store struct {
	version uint64
	current *models.RouteResult
	loading bool
	err     string
}

// New returns an empty store: no route, not loading, no error.
func New() *Store {
	return &Store{}
}

// Begin marks the start of a new request: it bumps the version counter,
// sets the loading flag and clears any previous error. The returned
// version must accompany the matching Resolve or Fail call.
func (s *Store) Begin() uint64 {
	s.version++
	s.loading = true
	s.err = ""
	return s.version
}

// Resolve applies a successful result if v is still the latest issued
// version. It reports whether the result was applied; a stale result is
// discarded with no field touched.
func (s *Store) Resolve(v uint64, res *models.RouteResult) bool {
	if v != s.version {
		return false
	}
	s.current = res
	s.loading = false
	s.err = ""
	return true
}

// Fail records a request failure if v is still the latest issued
// version. The previous route, if any, is left in place so the display
// keeps showing it. Stale failures are discarded.
func (s *Store) Fail(v uint64, err error) bool {
	if v != s.version {
		return false
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
	} else {
		s.err = "request failed"
	}
	return true
}

// Current returns the latest applied route, or nil before the first
// successful request.
func (s *Store) Current() *models.RouteResult {
	return s.current
}

// Loading reports whether the latest issued request is still pending.
func (s *Store) Loading() bool {
	return s.loading
}

// Err returns the user-facing error message from the latest applied
// failure, or "" when the latest completion succeeded or is pending.
func (s *Store) Err() string {
	return s.err
}

// Version returns the version of the most recently issued request.
func (s *Store) Version() uint64 {
	return s.version
}
