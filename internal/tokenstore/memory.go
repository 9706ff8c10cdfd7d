package tokenstore

import "sync"

// Memory is an in-process Store. It does not survive restarts and is meant
// for tests and short-lived sessions.
type Memory struct {
	mu   sync.RWMutex
	pair Pair
	has  bool

	notifier
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the current pair.
func (m *Memory) Load() (Pair, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, m.has
}

// Save replaces the stored pair.
func (m *Memory) Save(pair Pair) error {
	m.mu.Lock()
	m.pair = pair
	m.has = true
	m.mu.Unlock()

	m.notify()
	return nil
}

// Clear removes both tokens.
func (m *Memory) Clear() error {
	m.mu.Lock()
	m.pair = Pair{}
	m.has = false
	m.mu.Unlock()

	m.notify()
	return nil
}

// Subscribe registers fn to be called after every Save or Clear.
func (m *Memory) Subscribe(fn func()) func() {
	return m.subscribe(fn)
}
