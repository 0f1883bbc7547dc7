package store

import (
	"sync"
	"time"

	"github.com/i474232898/drying-rack-forecast/internal/forecast"
)

// StateStore is a concurrency-safe in-memory holder of the forecast state.
type StateStore struct {
	mu    sync.RWMutex
	state forecast.State
}

// NewStateStore creates a StateStore seeded with the fallback entries.
func NewStateStore(now time.Time) *StateStore {
	return &StateStore{
		state: forecast.State{
			Entries:     forecast.FallbackEntries(now),
			IsFallback:  true,
			LastUpdated: now,
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *StateStore) Snapshot() forecast.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// BeginLoad sets the loading flag and clears the last error.
// It returns false when a load is already in flight.
func (s *StateStore) BeginLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsLoading {
		return false
	}
	s.state.IsLoading = true
	s.state.LastError = nil
	return true
}

// CommitResult records the outcome of a load and clears the loading flag.
// Empty entries are ignored so the state never goes blank.
func (s *StateStore) CommitResult(entries []forecast.Entry, isFallback bool, fetchErr *forecast.FetchError, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) > 0 {
		s.state.Entries = make([]forecast.Entry, len(entries))
		copy(s.state.Entries, entries)
		s.state.IsFallback = isFallback
		s.state.LastUpdated = at
	}
	s.state.LastError = fetchErr
	s.state.IsLoading = false
}

var _ forecast.Store = (*StateStore)(nil)
