package cli

import (
	"context"

	"task-planner/internal/errors"
)

// PurgeOptions holds the flags of the purge command
type PurgeOptions struct {
	Completed bool
	All       bool
}

// PurgeCommand removes completed tasks or every task
type PurgeCommand struct {
	app  *App
	opts PurgeOptions
}

// NewPurgeCommand creates a new purge command handler
func NewPurgeCommand(app *App) *PurgeCommand {
	return &PurgeCommand{app: app}
}

// SetOptions sets the flag values for the next Execute
func (c *PurgeCommand) SetOptions(opts PurgeOptions) {
	c.opts = opts
}

// Execute runs the purge command
func (c *PurgeCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	switch {
	case c.opts.All:
		if c.app.api.IsEmpty() {
			c.app.printf("No tasks to remove\n")
			return nil
		}
		pendings, err := c.app.api.DeleteAll(ctx)
		if err != nil {
			return eh.Handle("remove all tasks", err)
		}
		c.app.waitAll(ctx, pendings)
		c.app.printf("Removed %s\n", plural(len(pendings), "task"))
	case c.opts.Completed:
		if c.app.api.HasNoCompletedItems() {
			c.app.printf("No completed tasks to remove\n")
			return nil
		}
		pendings, err := c.app.api.DeleteCompleted(ctx)
		if err != nil {
			return eh.Handle("remove completed tasks", err)
		}
		c.app.waitAll(ctx, pendings)
		c.app.printf("Removed %s\n", plural(len(pendings), "completed task"))
	default:
		return eh.Handle("purge", errors.NewInvalidInputError("flags", args, "use --completed or --all"))
	}
	return nil
}
