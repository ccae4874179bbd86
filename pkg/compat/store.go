package compat

import "sync"

// Keys aliased by the DMS store fix.
const (
	AttachmentModelKey  = "ir.attachment"
	LegacyAttachmentKey = "Attachment"
)

// Store is a keyed registry of model handles, such as a client message store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewStore creates a store seeded with entries.
func NewStore(entries map[string]any) *Store {
	s := &Store{entries: make(map[string]any, len(entries))}
	for k, v := range entries {
		s.entries[k] = v
	}
	return s
}

// Lookup returns the entry stored under key.
func (s *Store) Lookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Put stores value under key.
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Alias exposes the entry stored under from at the legacy key to. It does
// nothing when from is absent or to is already taken, and reports whether
// an alias was added.
func (s *Store) Alias(from, to string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[from]
	if !ok || v == nil {
		return false
	}
	if _, taken := s.entries[to]; taken {
		return false
	}
	s.entries[to] = v
	return true
}

// ApplyAttachmentAlias keeps modules that still read store.Attachment working
// against stores keyed by model name.
func ApplyAttachmentAlias(s *Store) bool {
	return s.Alias(AttachmentModelKey, LegacyAttachmentKey)
}
