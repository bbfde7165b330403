package domain

import (
	"sync"
	"time"
)

// EventKind identifies the type of an Event.
type EventKind string

const (
	EventVenvStart       EventKind = "venv_start"
	EventVenvComplete    EventKind = "venv_complete"
	EventVenvError       EventKind = "venv_error"
	EventPackageStart    EventKind = "package_start"
	EventPackageComplete EventKind = "package_complete"
	EventPackageError    EventKind = "package_error"
	EventUpdateComplete  EventKind = "update_complete"
)

// Event is a progress notification delivered to listeners.
type Event struct {
	Kind     EventKind
	Time     time.Time
	Name     string
	SrcType  SourceType
	SrcDesc  string
	Duration time.Duration
	CacheHit bool
	Message  string
	Summary  UpdateSummary
}

// UpdateSummary is the counter snapshot carried by EventUpdateComplete.
type UpdateSummary struct {
	Total       int
	Cacheable   int
	Editable    int
	CacheHits   int
	CacheMisses int
	Errors      int
	Duration    time.Duration
}

// UpdateStats are the counters shared by all fetch workers of one run.
type UpdateStats struct {
	mu      sync.Mutex
	summary UpdateSummary
}

// AddTotal records packages queued for update.
func (s *UpdateStats) AddTotal(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Total += n
}

// MarkCacheable records a package that goes through the cache.
func (s *UpdateStats) MarkCacheable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Cacheable++
}

// MarkEditable records a package materialized as an editable copy.
func (s *UpdateStats) MarkEditable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Editable++
}

// CacheHit records a cache hit.
func (s *UpdateStats) CacheHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.CacheHits++
}

// CacheMiss records a cache miss.
func (s *UpdateStats) CacheMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.CacheMisses++
}

// MarkError records a failed package.
func (s *UpdateStats) MarkError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Errors++
}

// Snapshot returns a copy of the counters.
func (s *UpdateStats) Snapshot() UpdateSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
