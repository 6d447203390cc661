package cli

import (
	"context"

	"task-planner/internal/errors"
)

// RemoveCommand handles the rm command
type RemoveCommand struct {
	app *App
}

// NewRemoveCommand creates a new rm command handler
func NewRemoveCommand(app *App) *RemoveCommand {
	return &RemoveCommand{app: app}
}

// Execute removes every referenced task in one batch. References are
// resolved against the list as it was before the removal.
func (c *RemoveCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	if len(args) == 0 {
		return eh.Handle("remove task", errors.NewInvalidInputError("task", args, "task reference required"))
	}

	seen := make(map[string]bool, len(args))
	ids := make([]string, 0, len(args))
	for _, ref := range args {
		item, err := c.app.api.ResolveTask(ref)
		if err != nil {
			return eh.Handle("remove task", err)
		}
		if !seen[item.ID] {
			seen[item.ID] = true
			ids = append(ids, item.ID)
		}
	}

	pendings, err := c.app.api.DeleteTasks(ctx, ids...)
	if err != nil {
		return eh.Handle("remove task", err)
	}
	c.app.waitAll(ctx, pendings)

	c.app.printf("Removed %s\n", plural(len(ids), "task"))
	return nil
}
