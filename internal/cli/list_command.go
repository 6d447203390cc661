package cli

import (
	"context"
	"strings"

	"task-planner/internal/domain"
)

// ListOptions holds the flags of the list command
type ListOptions struct {
	HideCompleted bool
	Priority      string
}

// ListCommand handles the list command
type ListCommand struct {
	app  *App
	opts ListOptions
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// SetOptions sets the flag values for the next Execute
func (c *ListCommand) SetOptions(opts ListOptions) {
	c.opts = opts
}

// Execute lists the tasks whose title contains the joined arguments.
// Positions always refer to the full list so they can be passed to other
// commands.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	if c.app.api.IsEmpty() {
		c.app.printf("No tasks yet. Add one with: tp add <title>\n")
		return nil
	}

	opts := domain.FilterOptions{
		Query:         strings.Join(args, " "),
		HideCompleted: c.opts.HideCompleted,
	}
	if c.opts.Priority != "" {
		p, err := parsePriority(c.opts.Priority)
		if err != nil {
			return NewErrorHandler().Handle("list tasks", err)
		}
		opts.Priority = &p
	}

	tasks := c.app.api.ListTasks(opts)
	if len(tasks) == 0 {
		c.app.printf("No tasks found\n")
		return nil
	}

	positions := c.app.positions()
	now := c.app.clock()
	for _, item := range tasks {
		c.app.printf("%s\n", c.app.renderer.TaskLine(positions[item.ID], item, now))
	}
	return nil
}
