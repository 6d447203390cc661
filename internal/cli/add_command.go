package cli

import (
	"context"
	"strings"

	"task-planner/internal/api"
	"task-planner/internal/errors"
)

// AddOptions holds the flags of the add command
type AddOptions struct {
	Description string
	Priority    string
	Due         string
	Reminder    bool
}

// AddCommand handles the add command
type AddCommand struct {
	app  *App
	opts AddOptions
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app}
}

// SetOptions sets the flag values for the next Execute
func (c *AddCommand) SetOptions(opts AddOptions) {
	c.opts = opts
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return eh.Handle("add task", errors.NewInvalidInputError("title", title, "task title required"))
	}

	priority, err := parsePriority(c.opts.Priority)
	if err != nil {
		return eh.Handle("add task", err)
	}
	due, err := c.app.parseDue(c.opts.Due)
	if err != nil {
		return eh.Handle("add task", err)
	}

	item, pending, err := c.app.api.CreateTask(ctx, api.TaskInput{
		Title:       title,
		Description: c.opts.Description,
		Priority:    priority,
		Due:         due,
		Reminder:    c.opts.Reminder,
	})
	if err != nil {
		return eh.Handle("add task", err)
	}

	c.app.printf("Added task %d: %s (%s)\n", c.app.position(item.ID), item.Title, ShortID(item.ID))
	c.app.reportReminder(ctx, pending)
	return nil
}
