package portal

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart markup keyed by chart configuration.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL RenderCache.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a cached entry or renders and stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

// Len returns the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{
		html:    html,
		expires: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// configHash returns a deterministic hash of a chart configuration.
func configHash(cfg any) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
