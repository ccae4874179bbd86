package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-portal/components/portal"
)

// RefreshDashboardInput asks for a fresh payload to be pushed to viewers.
type RefreshDashboardInput struct {
	Viewer portal.ViewerContext `json:"-"`
	Reason string               `json:"reason"`
}

type dashboardSource interface {
	Endpoint() string
	Retrieve(ctx context.Context, viewer portal.ViewerContext) (portal.Payload, error)
}

// RefreshDashboardCommand rebuilds a dashboard payload and hands it to the
// refresh hook.
type RefreshDashboardCommand struct {
	service   dashboardSource
	hook      portal.RefreshHook
	telemetry Telemetry
}

// NewRefreshDashboardCommand creates the command.
func NewRefreshDashboardCommand(service dashboardSource, hook portal.RefreshHook, telemetry Telemetry) *RefreshDashboardCommand {
	return &RefreshDashboardCommand{service: service, hook: hook, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDashboardInput] = (*RefreshDashboardCommand)(nil)

// Execute retrieves the payload for the viewer and notifies the hook.
func (c *RefreshDashboardCommand) Execute(ctx context.Context, msg RefreshDashboardInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	payload, err := c.service.Retrieve(ctx, msg.Viewer)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", c.service.Endpoint(), err)
	}
	reason := msg.Reason
	if reason == "" {
		reason = "manual"
	}
	if c.hook != nil {
		event := portal.DashboardEvent{Endpoint: c.service.Endpoint(), Reason: reason, Payload: payload}
		if err := c.hook.DashboardUpdated(ctx, event); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "portal.dashboard.refresh", map[string]any{
		"endpoint": c.service.Endpoint(),
		"user_id":  msg.Viewer.UserID,
		"reason":   reason,
	})
	return nil
}
