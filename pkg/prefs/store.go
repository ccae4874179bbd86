package prefs

import (
	"context"
	"sync"
)

// Store persists string values under string keys, per user scope.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Scopes hands out the Store of one user.
type Scopes interface {
	ForUser(userID string) Store
}

// MemoryScopes keeps one MemoryStore per user.
type MemoryScopes struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryScopes creates an empty set of per-user stores.
func NewMemoryScopes() *MemoryScopes {
	return &MemoryScopes{stores: make(map[string]*MemoryStore)}
}

// ForUser implements Scopes.
func (s *MemoryScopes) ForUser(userID string) Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.stores[userID]
	if !ok {
		store = NewMemoryStore()
		s.stores[userID] = store
	}
	return store
}
