package cli

import (
	"context"

	"task-planner/internal/errors"
)

// DuplicateCommand copies a task under new identifiers
type DuplicateCommand struct {
	app *App
}

// NewDuplicateCommand creates a new dup command handler
func NewDuplicateCommand(app *App) *DuplicateCommand {
	return &DuplicateCommand{app: app}
}

// Execute runs the dup command
func (c *DuplicateCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	if len(args) != 1 {
		return eh.Handle("duplicate task", errors.NewInvalidInputError("task", args, "exactly one task reference required"))
	}

	item, err := c.app.api.ResolveTask(args[0])
	if err != nil {
		return eh.Handle("duplicate task", err)
	}

	dup, pending, err := c.app.api.DuplicateTask(ctx, item.ID)
	if err != nil {
		return eh.Handle("duplicate task", err)
	}

	c.app.printf("Duplicated as task %d: %s (%s)\n", c.app.position(dup.ID), dup.Title, ShortID(dup.ID))
	c.app.reportReminder(ctx, pending)
	return nil
}
