package portal

import "context"

// DashboardEvent describes a committed dashboard refresh.
type DashboardEvent struct {
	Endpoint string  `json:"endpoint"`
	Reason   string  `json:"reason"`
	Seq      uint64  `json:"seq"`
	Payload  Payload `json:"payload,omitempty"`
}

// RefreshHook is notified after a dashboard payload is committed.
type RefreshHook interface {
	DashboardUpdated(ctx context.Context, event DashboardEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) DashboardUpdated(context.Context, DashboardEvent) error { return nil }
