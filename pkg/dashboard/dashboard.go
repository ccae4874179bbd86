// Package dashboard re-exports the portal dashboard service for host
// applications that should not depend on components/portal directly.
package dashboard

import (
	core "github.com/goliatone/go-portal/components/portal"
)

// Service exposes the underlying components/portal.DashboardService type.
type Service = core.DashboardService

// Options re-export for convenience.
type Options = core.ServiceOptions

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewDashboardService(opts)
}
