package cli

import (
	"context"

	"task-planner/internal/errors"
)

// EditOptions holds the flags of the edit command. Nil fields are left
// unchanged.
type EditOptions struct {
	Title       *string
	Description *string
	Priority    *string
	Due         *string
	Reminder    *bool
}

// EditCommand handles the edit command
type EditCommand struct {
	app  *App
	opts EditOptions
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app}
}

// SetOptions sets the flag values for the next Execute
func (c *EditCommand) SetOptions(opts EditOptions) {
	c.opts = opts
}

// Execute runs the edit command
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	if len(args) != 1 {
		return eh.Handle("edit task", errors.NewInvalidInputError("task", args, "exactly one task reference required"))
	}

	item, err := c.app.api.ResolveTask(args[0])
	if err != nil {
		return eh.Handle("edit task", err)
	}

	in := c.app.api.InputFrom(item)
	if c.opts.Title != nil {
		in.Title = *c.opts.Title
	}
	if c.opts.Description != nil {
		in.Description = *c.opts.Description
	}
	if c.opts.Priority != nil {
		priority, err := parsePriority(*c.opts.Priority)
		if err != nil {
			return eh.Handle("edit task", err)
		}
		in.Priority = priority
	}
	if c.opts.Due != nil {
		due, err := c.app.parseDue(*c.opts.Due)
		if err != nil {
			return eh.Handle("edit task", err)
		}
		in.Due = due
		if due == nil {
			// no date left to remind about
			in.Reminder = false
		}
	}
	if c.opts.Reminder != nil {
		in.Reminder = *c.opts.Reminder
	}

	updated, pending, err := c.app.api.UpdateTask(ctx, item.ID, in)
	if err != nil {
		return eh.Handle("edit task", err)
	}

	c.app.printf("Updated task %d: %s\n", c.app.position(updated.ID), updated.Title)
	c.app.reportReminder(ctx, pending)
	return nil
}
