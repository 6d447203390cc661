package cli

import (
	"context"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
)

// DoneCommand marks tasks completed, or open again for undo
type DoneCommand struct {
	app       *App
	completed bool
}

// NewDoneCommand creates a handler setting the completed state to completed
func NewDoneCommand(app *App, completed bool) *DoneCommand {
	return &DoneCommand{app: app, completed: completed}
}

// Execute runs the done or undo command
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()
	operation := "complete task"
	if !c.completed {
		operation = "reopen task"
	}

	if len(args) == 0 {
		return eh.Handle(operation, errors.NewInvalidInputError("task", args, "task reference required"))
	}

	// resolve every reference before changing anything
	items := make([]domain.TaskItem, 0, len(args))
	for _, ref := range args {
		item, err := c.app.api.ResolveTask(ref)
		if err != nil {
			return eh.Handle(operation, err)
		}
		items = append(items, item)
	}

	for _, item := range items {
		pending, err := c.app.api.SetCompleted(ctx, item.ID, c.completed)
		if err != nil {
			return eh.Handle(operation, err)
		}
		if c.completed {
			c.app.printf("Completed: %s\n", item.Title)
		} else {
			c.app.printf("Reopened: %s\n", item.Title)
		}
		c.app.reportReminder(ctx, pending)
	}
	return nil
}
