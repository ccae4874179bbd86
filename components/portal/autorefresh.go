package portal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-portal/pkg/prefs"
)

const defaultRefreshInterval = 30 * time.Second

// Refresher reloads a view.
type Refresher interface {
	OnRefresh(ctx context.Context) error
}

// AutoRefresher periodically refreshes a widget while the auto-refresh
// preference is active.
type AutoRefresher struct {
	target   Refresher
	toggle   *prefs.Toggle
	interval time.Duration
	logger   *zap.Logger
}

// NewAutoRefresher wires target to toggle. The toggle's store is read on
// every tick; a nil toggle always refreshes.
func NewAutoRefresher(target Refresher, toggle *prefs.Toggle, interval time.Duration, logger *zap.Logger) *AutoRefresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoRefresher{target: target, toggle: toggle, interval: interval, logger: logger}
}

// Run blocks until ctx is done, refreshing on every tick.
func (a *AutoRefresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Tick(ctx)
		}
	}
}

// Tick reloads the persisted preference, refreshes once if it is active, and
// reports whether it did. A preference that cannot be read skips the tick.
func (a *AutoRefresher) Tick(ctx context.Context) bool {
	if a.target == nil {
		return false
	}
	if a.toggle != nil {
		active, err := a.toggle.Load(ctx)
		if err != nil {
			a.logger.Warn("read auto refresh preference", zap.String("key", a.toggle.Key()), zap.Error(err))
			return false
		}
		if !active {
			return false
		}
	}
	if err := a.target.OnRefresh(ctx); err != nil {
		a.logger.Warn("auto refresh failed", zap.Error(err))
	}
	return true
}
