package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Keys of the boolean preferences persisted by the portal.
const (
	NotificationsKey = "muk_web_chatter.notifications"
	AutoRefreshKey   = "muk_web_refresh.active"
)

var errMissingStore = errors.New("prefs: store is required")

// Toggle mirrors a persisted boolean preference into memory.
type Toggle struct {
	store  Store
	key    string
	logger *zap.Logger

	mu    sync.Mutex
	value bool
}

// NewToggle binds a toggle to key in store. The in-memory value starts false
// until Load is called.
func NewToggle(store Store, key string, logger *zap.Logger) *Toggle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toggle{store: store, key: key, logger: logger}
}

// NewNotificationsToggle binds the chatter notification visibility toggle.
func NewNotificationsToggle(store Store, logger *zap.Logger) *Toggle {
	return NewToggle(store, NotificationsKey, logger)
}

// NewAutoRefreshToggle binds the control panel auto-refresh toggle.
func NewAutoRefreshToggle(store Store, logger *zap.Logger) *Toggle {
	return NewToggle(store, AutoRefreshKey, logger)
}

// Key returns the storage key.
func (t *Toggle) Key() string { return t.key }

// Value returns the in-memory state.
func (t *Toggle) Value() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Load reads the persisted value. Missing or undecodable values read as false.
func (t *Toggle) Load(ctx context.Context) (bool, error) {
	if t.store == nil {
		return false, errMissingStore
	}
	raw, ok, err := t.store.Get(ctx, t.key)
	if err != nil {
		return false, fmt.Errorf("prefs: read %s: %w", t.key, err)
	}
	value := false
	if ok {
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			t.logger.Warn("ignoring malformed preference", zap.String("key", t.key), zap.Error(err))
			value = false
		}
	}
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()
	return value, nil
}

// Set persists value and mirrors it in memory.
func (t *Toggle) Set(ctx context.Context, value bool) error {
	if t.store == nil {
		return errMissingStore
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setLocked(ctx, value)
}

// Flip inverts the current value, persists it, and returns the new value.
func (t *Toggle) Flip(ctx context.Context) (bool, error) {
	if t.store == nil {
		return false, errMissingStore
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next := !t.value
	if err := t.setLocked(ctx, next); err != nil {
		return t.value, err
	}
	return next, nil
}

func (t *Toggle) setLocked(ctx context.Context, value bool) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := t.store.Set(ctx, t.key, string(data)); err != nil {
		return fmt.Errorf("prefs: write %s: %w", t.key, err)
	}
	t.value = value
	return nil
}
