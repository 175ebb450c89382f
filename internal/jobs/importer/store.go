package importer

import (
	"sync"

	"github.com/ternarybob/subimport/internal/models"
)

// store holds JobState and the log buffer. Mutators are unexported and only
// called by the poller, which serialises them under its own lock. Readers get
// value copies.
type store struct {
	mu      sync.RWMutex
	state   models.JobState
	logs    string
	changed chan struct{}
}

func newStore() *store {
	return &store{
		state:   models.IdleJobState(),
		changed: make(chan struct{}),
	}
}

func (s *store) snapshot() models.JobState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *store) logText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logs
}

// view returns the current state together with the channel that will be
// closed on the next change, so waiters cannot miss an update.
func (s *store) view() (models.JobState, <-chan struct{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.changed
}

func (s *store) setState(state models.JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.notifyLocked()
}

// setLogs replaces the buffer and reports whether the text changed.
func (s *store) setLogs(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logs == text {
		return false
	}
	s.logs = text
	s.notifyLocked()
	return true
}

func (s *store) reset(state models.JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.logs = ""
	s.notifyLocked()
}

func (s *store) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
