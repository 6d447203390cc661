package cli

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/notify"
)

type rootHarness struct {
	ta       *testApp
	root     *RootCommand
	cfg      *config.Config
	builds   int
	cleanups int
}

func setupRoot(t *testing.T) *rootHarness {
	t.Helper()

	h := &rootHarness{ta: setupTestApp(t, notify.Authorized)}
	h.root = NewRootCommand(config.NewLoaderWithPath(""), func(ctx context.Context, cfg *config.Config) (*App, func(), error) {
		h.cfg = cfg
		h.builds++
		return h.ta.app, func() { h.cleanups++ }, nil
	})
	h.root.Command().SetOut(io.Discard)
	h.root.Command().SetErr(io.Discard)
	return h
}

func (h *rootHarness) execute(args ...string) error {
	h.root.Command().SetArgs(args)
	return h.root.ExecuteContext(context.Background())
}

func TestRootCommand_Add(t *testing.T) {
	h := setupRoot(t)

	err := h.execute("add", "Call", "mom", "-p", "high", "--desc", "Ask about Sunday", "--due", "2024-06-02 10:00", "--remind")
	require.NoError(t, err)
	assert.Equal(t, "Added task 1: Call mom (task-1)\nReminder set for 2024-06-02 10:00, delivered while tp watch runs\n", h.ta.out.String())
	assert.Equal(t, 1, h.builds)
	assert.Equal(t, 1, h.cleanups)

	item, err := h.ta.api.GetTask("task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, item.Priority)
	assert.Equal(t, "Ask about Sunday", item.Description)
	assert.True(t, item.HasNotification)
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	h := setupRoot(t)

	err := h.execute("--storage-key", "Errands", "--no-color", "--cancel-on-complete", "--verbose", "list")
	require.NoError(t, err)
	require.NotNil(t, h.cfg)
	assert.Equal(t, "Errands", h.cfg.Storage.Key)
	assert.False(t, h.cfg.Display.Color)
	assert.True(t, h.cfg.Reminders.CancelOnComplete)
	assert.Equal(t, "debug", h.cfg.Logging.Level)
}

func TestRootCommand_InvalidConfiguration(t *testing.T) {
	h := setupRoot(t)

	err := h.execute("--backend", "postgres", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Zero(t, h.builds)
}

func TestRootCommand_BuildFailure(t *testing.T) {
	root := NewRootCommand(config.NewLoaderWithPath(""), func(ctx context.Context, cfg *config.Config) (*App, func(), error) {
		return nil, nil, errors.New("storage unavailable")
	})
	root.Command().SetOut(io.Discard)
	root.Command().SetErr(io.Discard)
	root.Command().SetArgs([]string{"list"})

	assert.EqualError(t, root.ExecuteContext(context.Background()), "storage unavailable")
}

func TestRootCommand_CleanupAfterFailure(t *testing.T) {
	h := setupRoot(t)

	err := h.execute("show", "7")
	require.Error(t, err)
	assert.Equal(t, "failed to show task: task not found: 7", err.Error())
	assert.Equal(t, 1, h.cleanups)
}

func TestRootCommand_EditFlags(t *testing.T) {
	h := setupRoot(t)
	h.ta.add(t, "Call mom", AddOptions{Due: "2024-06-02 10:00", Reminder: true})

	require.NoError(t, h.execute("edit", "1", "--title", "Call mom back", "--no-remind"))

	item, err := h.ta.api.GetTask("task-1")
	require.NoError(t, err)
	assert.Equal(t, "Call mom back", item.Title)
	assert.False(t, item.HasNotification)
	assert.Equal(t, domain.DueDate{Year: 2024, Month: 6, Day: 2, Hour: 10, Minute: 0}, item.DueDate)
}

func TestRootCommand_FlagRules(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "purge needs a flag", args: []string{"purge"}},
		{name: "purge flags exclusive", args: []string{"purge", "--completed", "--all"}},
		{name: "remind flags exclusive", args: []string{"edit", "1", "--remind", "--no-remind"}},
		{name: "add needs a title", args: []string{"add"}},
		{name: "show takes one task", args: []string{"show", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupRoot(t)
			assert.Error(t, h.execute(tt.args...))
		})
	}
}

func TestRootCommand_PurgeAndList(t *testing.T) {
	h := setupRoot(t)
	h.ta.add(t, "Buy milk", AddOptions{})
	h.ta.add(t, "Pay rent", AddOptions{})

	require.NoError(t, h.execute("done", "1"))
	h.ta.reset()
	require.NoError(t, h.execute("purge", "--completed"))
	assert.Equal(t, "Removed 1 completed task\n", h.ta.out.String())

	h.ta.reset()
	require.NoError(t, h.execute("ls", "--hide-completed"))
	assert.Equal(t, "  1. [ ] Pay rent  (Medium priority)  task-3\n", h.ta.out.String())
}

type blockingCommand struct{}

func (blockingCommand) Execute(ctx context.Context, args []string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRootCommand_Timeout(t *testing.T) {
	h := setupRoot(t)
	h.ta.app.Registry().Register("show", blockingCommand{})

	err := h.execute("--app-timeout", "10ms", "show", "1")

	require.Error(t, err)
	assert.Equal(t, "failed to show: The operation timed out. Please try again.", err.Error())
	assert.Equal(t, 1, h.cleanups)
}
