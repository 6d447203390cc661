package cli

import (
	"context"
	"time"

	"task-planner/internal/api"
	"task-planner/internal/domain"
)

type sampleTask struct {
	input     api.TaskInput
	completed bool
}

func sampleTasks() []sampleTask {
	overdue := time.Date(2021, time.May, 25, 14, 15, 0, 0, time.Local)

	return []sampleTask{
		{input: api.TaskInput{Title: "Medium priority task", Description: "Description for a medium priority task", Priority: domain.PriorityMedium}},
		{input: api.TaskInput{Title: "High priority task", Description: "Description for a high priority task", Priority: domain.PriorityHigh}},
		{input: api.TaskInput{Title: "Low priority task", Description: "Description for a low priority task", Priority: domain.PriorityLow}},
		{input: api.TaskInput{Title: "Completed high priority task", Description: "Description for a completed high priority task", Priority: domain.PriorityHigh}, completed: true},
		{input: api.TaskInput{Title: "Task with a due date", Description: "Description for a task with a reminder date", Priority: domain.PriorityMedium, Due: &overdue}},
		{input: api.TaskInput{Title: "Task with a long description", Description: "Description for a long task. This description wraps over several lines on a narrow screen", Priority: domain.PriorityMedium}, completed: true},
		{input: api.TaskInput{Title: "Completed medium priority task", Description: "Description for a completed medium priority task", Priority: domain.PriorityMedium}, completed: true},
		{input: api.TaskInput{Title: "Completed low priority task", Description: "Description for a completed low priority task", Priority: domain.PriorityLow}, completed: true},
	}
}

// SeedCommand appends a set of sample tasks
type SeedCommand struct {
	app *App
}

// NewSeedCommand creates a new seed command handler
func NewSeedCommand(app *App) *SeedCommand {
	return &SeedCommand{app: app}
}

// Execute runs the seed command
func (c *SeedCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	samples := sampleTasks()
	for _, sample := range samples {
		item, pending, err := c.app.api.CreateTask(ctx, sample.input)
		if err != nil {
			return eh.Handle("add sample tasks", err)
		}
		c.app.reportReminder(ctx, pending)

		if sample.completed {
			if _, err := c.app.api.SetCompleted(ctx, item.ID, true); err != nil {
				return eh.Handle("add sample tasks", err)
			}
		}
	}

	c.app.printf("Added %s\n", plural(len(samples), "sample task"))
	return nil
}
