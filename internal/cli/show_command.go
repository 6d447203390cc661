package cli

import (
	"context"

	"task-planner/internal/errors"
)

// ShowCommand prints every field of one task
type ShowCommand struct {
	app *App
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{app: app}
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	if len(args) != 1 {
		return eh.Handle("show task", errors.NewInvalidInputError("task", args, "exactly one task reference required"))
	}

	item, err := c.app.api.ResolveTask(args[0])
	if err != nil {
		return eh.Handle("show task", err)
	}

	c.app.printf("%s", c.app.renderer.Details(item, c.app.clock()))
	return nil
}
