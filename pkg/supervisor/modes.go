package supervisor

import "sync"

// Modes holds the drain and terminate mode flags (C). Both are monotonic:
// once set to true they are never cleared.
type Modes struct {
	mu        sync.RWMutex
	drain     bool
	terminate bool
}

// NewModes creates a Modes with both flags cleared.
func NewModes() *Modes {
	return &Modes{}
}

// SetDrain sets drain mode. Safe to call more than once.
func (m *Modes) SetDrain() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drain = true
}

// IsDrain reports whether drain mode is set.
func (m *Modes) IsDrain() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drain
}

// SetTerminate sets terminate mode. Safe to call more than once.
func (m *Modes) SetTerminate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminate = true
}

// IsTerminate reports whether terminate mode is set.
func (m *Modes) IsTerminate() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.terminate
}
