package forecast

import "sync"

// Session is one dashboard session. It performs the automatic first load
// once and exposes the manual retry.
type Session struct {
	orch *Orchestrator

	mu              sync.Mutex
	initialLoadDone bool
}

func NewSession(orch *Orchestrator) *Session {
	return &Session{orch: orch}
}

// Start triggers the first load. Only the first call has an effect.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialLoadDone {
		return
	}
	s.initialLoadDone = true
	s.orch.RequestForecast()
}

// Retry asks for a fresh fetch. It reports false while one is in flight.
func (s *Session) Retry() bool {
	return s.orch.RequestForecast()
}

// State returns the current snapshot.
func (s *Session) State() State {
	return s.orch.State()
}

// Orchestrator returns the underlying orchestrator.
func (s *Session) Orchestrator() *Orchestrator {
	return s.orch
}
