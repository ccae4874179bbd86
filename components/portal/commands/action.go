package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-portal/components/portal"
)

// ExecuteActionInput names the navigation action behind a clicked card.
type ExecuteActionInput struct {
	Action string `json:"action"`
}

// ExecuteActionCommand forwards a card action to the action executor.
type ExecuteActionCommand struct {
	actions   portal.ActionExecutor
	telemetry Telemetry
}

// NewExecuteActionCommand creates the command.
func NewExecuteActionCommand(actions portal.ActionExecutor, telemetry Telemetry) *ExecuteActionCommand {
	return &ExecuteActionCommand{actions: actions, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExecuteActionInput] = (*ExecuteActionCommand)(nil)

// Execute runs the action verbatim.
func (c *ExecuteActionCommand) Execute(ctx context.Context, msg ExecuteActionInput) error {
	if c.actions == nil {
		return errors.New("action command requires executor")
	}
	if msg.Action == "" {
		return errors.New("action command requires an action")
	}
	if err := c.actions.DoAction(ctx, msg.Action); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "portal.action.execute", map[string]any{"action": msg.Action})
	return nil
}
