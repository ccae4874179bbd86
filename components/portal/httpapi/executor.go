package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-portal/components/portal/commands"
)

// Executor runs the portal commands behind the HTTP transports.
type Executor interface {
	Refresh(ctx context.Context, input commands.RefreshDashboardInput) error
	Action(ctx context.Context, input commands.ExecuteActionInput) error
	ToggleNotifications(ctx context.Context, input commands.TogglePreferenceInput) error
	ToggleAutoRefresh(ctx context.Context, input commands.TogglePreferenceInput) error
	SaveMenuOrder(ctx context.Context, input commands.SaveMenuOrderInput) error
}

var errCommandNotConfigured = errors.New("httpapi: command not configured")

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	RefreshCommander       gocommand.Commander[commands.RefreshDashboardInput]
	ActionCommander        gocommand.Commander[commands.ExecuteActionInput]
	NotificationsCommander gocommand.Commander[commands.TogglePreferenceInput]
	AutoRefreshCommander   gocommand.Commander[commands.TogglePreferenceInput]
	MenuOrderCommander     gocommand.Commander[commands.SaveMenuOrderInput]
}

var _ Executor = (*CommandExecutor)(nil)

// Refresh implements Executor.
func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshDashboardInput) error {
	if e.RefreshCommander == nil {
		return errCommandNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, input)
}

// Action implements Executor.
func (e *CommandExecutor) Action(ctx context.Context, input commands.ExecuteActionInput) error {
	if e.ActionCommander == nil {
		return errCommandNotConfigured
	}
	return e.ActionCommander.Execute(ctx, input)
}

// ToggleNotifications implements Executor.
func (e *CommandExecutor) ToggleNotifications(ctx context.Context, input commands.TogglePreferenceInput) error {
	if e.NotificationsCommander == nil {
		return errCommandNotConfigured
	}
	return e.NotificationsCommander.Execute(ctx, input)
}

// ToggleAutoRefresh implements Executor.
func (e *CommandExecutor) ToggleAutoRefresh(ctx context.Context, input commands.TogglePreferenceInput) error {
	if e.AutoRefreshCommander == nil {
		return errCommandNotConfigured
	}
	return e.AutoRefreshCommander.Execute(ctx, input)
}

// SaveMenuOrder implements Executor.
func (e *CommandExecutor) SaveMenuOrder(ctx context.Context, input commands.SaveMenuOrderInput) error {
	if e.MenuOrderCommander == nil {
		return errCommandNotConfigured
	}
	return e.MenuOrderCommander.Execute(ctx, input)
}

// Handlers returns net/http handlers running the same commanders.
func (e *CommandExecutor) Handlers(procedures Dispatcher) *Handlers {
	return &Handlers{
		Procedures:    procedures,
		Refresh:       e.RefreshCommander,
		Action:        e.ActionCommander,
		Notifications: e.NotificationsCommander,
		AutoRefresh:   e.AutoRefreshCommander,
		MenuOrder:     e.MenuOrderCommander,
	}
}
