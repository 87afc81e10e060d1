package checkpoint

import (
	"sync"
)

// MemoryStore is an in-memory checkpoint store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]string // provider -> code -> model
	order  map[string][]string          // provider -> codes in insertion order
	last   map[string]string            // provider -> last recorded model
	closed bool
}

// NewMemoryStore creates a new in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]map[string]string),
		order: make(map[string][]string),
		last:  make(map[string]string),
	}
}

// IsProcessed implements Store.
func (m *MemoryStore) IsProcessed(provider, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrStoreClosed
	}

	_, ok := m.data[provider][normalize(code)]
	return ok, nil
}

// MarkProcessed implements Store.
func (m *MemoryStore) MarkProcessed(provider, code, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	code = normalize(code)
	if m.data[provider] == nil {
		m.data[provider] = make(map[string]string)
	}
	if _, exists := m.data[provider][code]; !exists {
		m.order[provider] = append(m.order[provider], code)
	}
	m.data[provider][code] = model
	m.last[provider] = model
	return nil
}

// Pending implements Store.
func (m *MemoryStore) Pending(provider string, codes []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	done := m.data[provider]
	pending := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := done[normalize(code)]; !ok {
			pending = append(pending, code)
		}
	}
	return pending, nil
}

// Processed implements Store.
func (m *MemoryStore) Processed(provider string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	// Return a copy to prevent modification
	codes := make([]string, len(m.order[provider]))
	copy(codes, m.order[provider])
	return codes, nil
}

// LastModel implements Store.
func (m *MemoryStore) LastModel(provider string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", ErrStoreClosed
	}

	return m.last[provider], nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
