package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ChartBundle is the asset bundle holding the chart runtime.
const ChartBundle = "echarts.min.js"

// BundleFetcher retrieves a named asset bundle.
type BundleFetcher interface {
	FetchBundle(ctx context.Context, name string) error
}

// BundleFetcherFunc adapts a function into a BundleFetcher.
type BundleFetcherFunc func(ctx context.Context, name string) error

// FetchBundle implements BundleFetcher.
func (f BundleFetcherFunc) FetchBundle(ctx context.Context, name string) error {
	return f(ctx, name)
}

// BundleLoader loads bundles at most once. Concurrent loads of the same
// bundle share one fetch; failed loads are retried on the next call.
type BundleLoader struct {
	fetcher BundleFetcher
	group   singleflight.Group

	mu     sync.RWMutex
	loaded map[string]struct{}
}

// NewBundleLoader wraps fetcher. A nil fetcher marks bundles loaded immediately.
func NewBundleLoader(fetcher BundleFetcher) *BundleLoader {
	return &BundleLoader{fetcher: fetcher, loaded: make(map[string]struct{})}
}

var defaultBundles = NewBundleLoader(nil)

// DefaultBundleLoader is the process-wide loader shared by widgets that do
// not configure their own.
func DefaultBundleLoader() *BundleLoader {
	return defaultBundles
}

// Loaded reports whether name has been loaded.
func (l *BundleLoader) Loaded(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.loaded[name]
	return ok
}

// Load ensures name is loaded. It returns when the bundle is available, the
// fetch failed, or ctx is done.
func (l *BundleLoader) Load(ctx context.Context, name string) error {
	if l.Loaded(name) {
		return nil
	}
	ch := l.group.DoChan(name, func() (any, error) {
		if l.Loaded(name) {
			return nil, nil
		}
		if l.fetcher != nil {
			if err := l.fetcher.FetchBundle(context.WithoutCancel(ctx), name); err != nil {
				return nil, fmt.Errorf("portal: load bundle %s: %w", name, err)
			}
		}
		l.mu.Lock()
		l.loaded[name] = struct{}{}
		l.mu.Unlock()
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// HTTPBundleFetcher checks bundles are reachable under a base URL.
type HTTPBundleFetcher struct {
	BaseURL string
	Client  *http.Client
}

// FetchBundle issues a GET for the bundle and fails on non-2xx responses.
func (f HTTPBundleFetcher) FetchBundle(ctx context.Context, name string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(f.BaseURL, "/") + "/" + strings.TrimLeft(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bundle %s: unexpected status %d", name, resp.StatusCode)
	}
	return nil
}
