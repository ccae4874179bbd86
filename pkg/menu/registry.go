package menu

import (
	"fmt"
	"sync"
)

// ReviewerMenuEntry is the systray item redundant with the activities menu.
const ReviewerMenuEntry = "base_tier_validation.ReviewerMenu"

// Registry is an ordered set of named UI entries (systray items, user menu
// items...). Each application owns its registries; there is no global one.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]any{}}
}

// Add registers an entry under name.
func (r *Registry) Add(name string, entry any) error {
	if name == "" {
		return fmt.Errorf("menu: entry name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("menu: entry %s already registered", name)
	}
	r.entries[name] = entry
	r.order = append(r.order, name)
	return nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// RemoveIfPresent drops name and reports whether it was registered.
func (r *Registry) RemoveIfPresent(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Names lists registered entries in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// HideReviewerMenu is applied at startup; the reviewer systray item is redundant.
func HideReviewerMenu(systray *Registry) bool {
	if systray == nil {
		return false
	}
	return systray.RemoveIfPresent(ReviewerMenuEntry)
}
