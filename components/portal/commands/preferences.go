package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/pkg/menu"
	"github.com/goliatone/go-portal/pkg/prefs"
)

// TogglePreferenceInput identifies the viewer whose preference flips.
type TogglePreferenceInput struct {
	Viewer portal.ViewerContext `json:"-"`
}

// TogglePreferenceCommand flips a boolean preference of the viewer.
type TogglePreferenceCommand struct {
	scopes    prefs.Scopes
	key       string
	telemetry Telemetry
	// Result receives the new value after a successful flip.
	Result func(viewer portal.ViewerContext, value bool)
}

// NewTogglePreferenceCommand creates a command flipping key.
func NewTogglePreferenceCommand(scopes prefs.Scopes, key string, telemetry Telemetry) *TogglePreferenceCommand {
	return &TogglePreferenceCommand{scopes: scopes, key: key, telemetry: normalizeTelemetry(telemetry)}
}

// NewToggleNotificationsCommand flips the chatter notification visibility.
func NewToggleNotificationsCommand(scopes prefs.Scopes, telemetry Telemetry) *TogglePreferenceCommand {
	return NewTogglePreferenceCommand(scopes, prefs.NotificationsKey, telemetry)
}

// NewToggleAutoRefreshCommand flips the control panel auto-refresh.
func NewToggleAutoRefreshCommand(scopes prefs.Scopes, telemetry Telemetry) *TogglePreferenceCommand {
	return NewTogglePreferenceCommand(scopes, prefs.AutoRefreshKey, telemetry)
}

var _ gocommand.Commander[TogglePreferenceInput] = (*TogglePreferenceCommand)(nil)

// Execute loads the persisted value and stores its negation.
func (c *TogglePreferenceCommand) Execute(ctx context.Context, msg TogglePreferenceInput) error {
	if c.scopes == nil {
		return errors.New("preference command requires a store")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preference command requires viewer user id")
	}
	toggle := prefs.NewToggle(c.scopes.ForUser(msg.Viewer.UserID), c.key, nil)
	if _, err := toggle.Load(ctx); err != nil {
		return err
	}
	value, err := toggle.Flip(ctx)
	if err != nil {
		return err
	}
	if c.Result != nil {
		c.Result(msg.Viewer, value)
	}
	c.telemetry.Record(ctx, "portal.preference.toggle", map[string]any{
		"user_id": msg.Viewer.UserID,
		"key":     c.key,
		"value":   value,
	})
	return nil
}

// SaveMenuOrderInput carries the viewer's preferred app order.
type SaveMenuOrderInput struct {
	Viewer portal.ViewerContext `json:"-"`
	XMLIDs []string             `json:"xmlids"`
}

// SaveMenuOrderCommand persists the home menu order of the viewer.
type SaveMenuOrderCommand struct {
	scopes    prefs.Scopes
	telemetry Telemetry
}

// NewSaveMenuOrderCommand creates the command.
func NewSaveMenuOrderCommand(scopes prefs.Scopes, telemetry Telemetry) *SaveMenuOrderCommand {
	return &SaveMenuOrderCommand{scopes: scopes, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveMenuOrderInput] = (*SaveMenuOrderCommand)(nil)

// Execute stores the order under the homemenu_config setting.
func (c *SaveMenuOrderCommand) Execute(ctx context.Context, msg SaveMenuOrderInput) error {
	if c.scopes == nil {
		return errors.New("menu order command requires a store")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("menu order command requires viewer user id")
	}
	service := menu.NewAppMenuService(nil, c.scopes.ForUser(msg.Viewer.UserID), nil)
	if err := service.SaveOrder(ctx, msg.XMLIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "portal.menu.order", map[string]any{
		"user_id": msg.Viewer.UserID,
		"apps":    len(msg.XMLIDs),
	})
	return nil
}
