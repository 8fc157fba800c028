package extalife

import "sync"

// StateStore holds the DeviceState of a single channel. Every method is a
// single critical section, so readers never see a partially applied write.
type StateStore struct {
	state DeviceState
	mu    sync.RWMutex
}

func NewStateStore(initial DeviceState) *StateStore {
	return &StateStore{state: initial}
}

func (s *StateStore) Read() DeviceState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Apply merges p into the stored state and returns the result.
func (s *StateStore) Apply(p StatePatch) DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.merge(p)
	return s.state
}

func (s *StateStore) Equals(candidate DeviceState) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state == candidate
}

// Update builds a candidate from the current state and commits it only if it
// differs. The read, the comparison and the write happen under one lock.
func (s *StateStore) Update(fn func(current DeviceState) DeviceState) (DeviceState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := fn(s.state)
	if candidate == s.state {
		return s.state, false
	}
	s.state = candidate
	return s.state, true
}
