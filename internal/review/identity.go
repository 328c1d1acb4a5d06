package review

import "sync"

// IdentityMap keeps at most one live Review per primary key.
type IdentityMap struct {
	mu      sync.RWMutex
	entries map[int64]*Review
}

// NewIdentityMap creates an empty identity map
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{entries: make(map[int64]*Review)}
}

// Get returns the instance cached for id.
func (m *IdentityMap) Get(id int64) (*Review, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.entries[id]
	return r, ok
}

// Add registers r under its ID. A key already held by a different instance
// is left alone and Add returns false; re-adding the same instance is a no-op.
// Reviews without an ID are never cached.
func (m *IdentityMap) Add(r *Review) bool {
	if !r.HasID() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[r.ID()]; ok {
		return existing == r
	}
	m.entries[r.ID()] = r
	return true
}

// Put registers r under its ID, replacing any other instance, and returns the
// displaced instance if there was one.
func (m *IdentityMap) Put(r *Review) *Review {
	if !r.HasID() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.entries[r.ID()]
	m.entries[r.ID()] = r
	if prev == r {
		return nil
	}
	return prev
}

// Evict drops id from the map. Absent keys are ignored.
func (m *IdentityMap) Evict(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// Len returns the number of cached instances.
func (m *IdentityMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Reset empties the map and detaches every instance it held, so none of
// them can write to a row that later reuses its key.
func (m *IdentityMap) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.entries {
		r.detach()
	}
	clear(m.entries)
}
