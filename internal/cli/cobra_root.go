package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"task-planner/internal/config"
	"task-planner/internal/errors"
)

// BuildFunc assembles an App for a loaded configuration. The returned func
// releases its resources.
type BuildFunc func(ctx context.Context, cfg *config.Config) (*App, func(), error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	loader  *config.Loader
	build   BuildFunc
	config  *config.Config
	app     *App
	cleanup func()
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader, build BuildFunc) *RootCommand {
	root := &RootCommand{
		loader: loader,
		build:  build,
	}

	root.cmd = &cobra.Command{
		Use:   "tp",
		Short: "A command-line task planner with reminders",
		Long: `Task Planner (tp) keeps a personal task list with priorities, due dates and reminders.

EXAMPLES:
  tp add "Pay rent" --priority high --due "2024-07-01 09:00" --remind
  tp list                                  # List all tasks
  tp list rent --hide-completed            # List open tasks whose title contains "rent"
  tp done 1                                # Complete the first task
  tp edit 1 --due none                     # Clear the due date and reminder
  tp purge --completed                     # Remove completed tasks
  tp watch --metrics-addr :9090            # Deliver reminders and expose metrics

TASK REFERENCES:
  A task is referenced by its list position (1, 2, ...), its id, or a unique id prefix.

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > ~/.config/tp/config.yaml > defaults

    TP_STORAGE_DIR                         Storage directory (default: ~/.tp)
    TP_STORAGE_KEY                         Key of the task list blob (default: TodoList)
    TP_STORAGE_BACKEND                     file or sqlite (default: file)
    TP_REMINDERS_CANCEL_ON_COMPLETE        Drop reminders of completed tasks (default: false)
    TP_REMINDERS_AUTH_STATE                Initial notification permission (default: undetermined)
    TP_VALIDATION_TITLE_MAX_LENGTH         Max title length (default: 255)
    TP_DISPLAY_DATE_FORMAT                 Date layout (default: Jan 2, 2006 3:04 PM)
    TP_DISPLAY_COLOR                       Colored output (default: true)
    TP_APPLICATION_TIMEOUT                 Command timeout (default: 60s)
    TP_LOGGING_LEVEL                       debug, info, warn or error (default: warn)
    TP_DEBUG                               Force debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd.Context())
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and releases what setup
// built, whether or not the command failed.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	defer func() {
		if r.cleanup != nil {
			r.cleanup()
			r.cleanup = nil
		}
	}()
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("storage-dir", "", "Storage directory (overrides TP_STORAGE_DIR)")
	flags.String("storage-key", "", "Task list key (overrides TP_STORAGE_KEY)")
	flags.String("backend", "", "Storage backend, file or sqlite (overrides TP_STORAGE_BACKEND)")
	flags.Bool("cancel-on-complete", false, "Cancel reminders when tasks are completed (overrides TP_REMINDERS_CANCEL_ON_COMPLETE)")
	flags.String("date-format", "", "Date display layout (overrides TP_DISPLAY_DATE_FORMAT)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Duration("app-timeout", 0, "Command timeout (overrides TP_APPLICATION_TIMEOUT)")
	flags.Bool("verbose", false, "Enable debug logging")
	flags.String("log-level", "", "Log level (overrides TP_LOGGING_LEVEL)")
	flags.String("log-format", "", "Log format, json or console (overrides TP_LOGGING_FORMAT)")
}

// overridesFromFlags collects the global flags the user set
func (r *RootCommand) overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	o := &config.ConfigOverrides{}

	if flags.Changed("storage-dir") {
		v, _ := flags.GetString("storage-dir")
		o.StorageDir = &v
	}
	if flags.Changed("storage-key") {
		v, _ := flags.GetString("storage-key")
		o.StorageKey = &v
	}
	if flags.Changed("backend") {
		v, _ := flags.GetString("backend")
		o.StorageBackend = &v
	}
	if flags.Changed("cancel-on-complete") {
		v, _ := flags.GetBool("cancel-on-complete")
		o.CancelOnComplete = &v
	}
	if flags.Changed("date-format") {
		v, _ := flags.GetString("date-format")
		o.DateFormat = &v
	}
	if flags.Changed("no-color") {
		v, _ := flags.GetBool("no-color")
		color := !v
		o.Color = &color
	}
	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		o.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		o.LogFormat = &v
	}

	return o
}

// setup loads configuration and builds the app before any command runs
func (r *RootCommand) setup(ctx context.Context) error {
	if r.app != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := r.loader.LoadWithOverrides(r.overridesFromFlags(r.cmd.PersistentFlags()))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg

	app, cleanup, err := r.build(ctx, cfg)
	if err != nil {
		return err
	}
	r.app = app
	r.cleanup = cleanup
	return nil
}

// run executes the registered handler for name within the app timeout
func (r *RootCommand) run(cmd *cobra.Command, name string, args []string) error {
	timeout := r.getAppTimeout()
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	err := r.app.registry.Execute(ctx, name, args)
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewErrorHandler().Handle(name, errors.NewTimeoutError(name, timeout))
	}
	return err
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a task to the end of the list.

Due dates use "YYYY-MM-DD HH:MM" in local time; a bare date means 09:00.
A reminder needs a due date that has not passed yet.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			opts := AddOptions{}
			opts.Description, _ = f.GetString("desc")
			opts.Priority, _ = f.GetString("priority")
			opts.Due, _ = f.GetString("due")
			opts.Reminder, _ = f.GetBool("remind")
			r.handler("add").(*AddCommand).SetOptions(opts)
			return r.run(cmd, "add", args)
		},
	}
	addCmd.Flags().String("desc", "", "Task description")
	addCmd.Flags().StringP("priority", "p", "medium", "Priority: low, medium or high")
	addCmd.Flags().String("due", "", "Due date, YYYY-MM-DD HH:MM")
	addCmd.Flags().Bool("remind", false, "Send a reminder at the due date")

	editCmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Change a task",
		Long: `Change the fields given as flags and keep the others.

Use --due none to clear the due date, which also drops the reminder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			opts := EditOptions{}
			opts.Title = changedString(f, "title")
			opts.Description = changedString(f, "desc")
			opts.Priority = changedString(f, "priority")
			opts.Due = changedString(f, "due")
			if f.Changed("remind") {
				v, _ := f.GetBool("remind")
				opts.Reminder = &v
			}
			if f.Changed("no-remind") {
				v := false
				opts.Reminder = &v
			}
			r.handler("edit").(*EditCommand).SetOptions(opts)
			return r.run(cmd, "edit", args)
		},
	}
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("desc", "", "New description")
	editCmd.Flags().StringP("priority", "p", "", "New priority: low, medium or high")
	editCmd.Flags().String("due", "", "New due date, YYYY-MM-DD HH:MM, or none")
	editCmd.Flags().Bool("remind", false, "Turn the reminder on")
	editCmd.Flags().Bool("no-remind", false, "Turn the reminder off")
	editCmd.MarkFlagsMutuallyExclusive("remind", "no-remind")

	doneCmd := &cobra.Command{
		Use:   "done <task>...",
		Short: "Mark tasks completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "done", args)
		},
	}

	undoCmd := &cobra.Command{
		Use:   "undo <task>...",
		Short: "Mark tasks open again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "undo", args)
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <task>...",
		Aliases: []string{"remove"},
		Short:   "Remove tasks and cancel their reminders",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "rm", args)
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "purge --completed|--all",
		Short: "Remove completed tasks or every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			opts := PurgeOptions{}
			opts.Completed, _ = f.GetBool("completed")
			opts.All, _ = f.GetBool("all")
			r.handler("purge").(*PurgeCommand).SetOptions(opts)
			return r.run(cmd, "purge", args)
		},
	}
	purgeCmd.Flags().Bool("completed", false, "Remove completed tasks")
	purgeCmd.Flags().Bool("all", false, "Remove every task")
	purgeCmd.MarkFlagsMutuallyExclusive("completed", "all")
	purgeCmd.MarkFlagsOneRequired("completed", "all")

	listCmd := &cobra.Command{
		Use:     "list [text]",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks, optionally only those whose title contains text (case-insensitive).

Examples:
  tp list                      # List all tasks
  tp list milk                 # Tasks with "milk" in the title
  tp list -p high --hide-completed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			opts := ListOptions{}
			opts.HideCompleted, _ = f.GetBool("hide-completed")
			opts.Priority, _ = f.GetString("priority")
			r.handler("list").(*ListCommand).SetOptions(opts)
			return r.run(cmd, "list", args)
		},
	}
	listCmd.Flags().Bool("hide-completed", false, "Only show open tasks")
	listCmd.Flags().StringP("priority", "p", "", "Only show tasks with this priority")

	showCmd := &cobra.Command{
		Use:   "show <task>",
		Short: "Show every field of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "show", args)
		},
	}

	dupCmd := &cobra.Command{
		Use:   "dup <task>",
		Short: "Duplicate a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "dup", args)
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Add sample tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, "seed", args)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Deliver reminders until interrupted",
		Long: `Re-arm every stored reminder and print reminders as they fire.

Runs until interrupted, or for --for when given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			opts := WatchOptions{}
			opts.MetricsAddr, _ = f.GetString("metrics-addr")
			opts.Duration, _ = f.GetDuration("for")
			r.handler("watch").(*WatchCommand).SetOptions(opts)

			// watch ignores the command timeout
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return r.app.registry.Execute(ctx, "watch", args)
		},
	}
	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	watchCmd.Flags().Duration("for", 0, "Stop after this long")

	r.cmd.AddCommand(
		addCmd,
		editCmd,
		doneCmd,
		undoCmd,
		rmCmd,
		purgeCmd,
		listCmd,
		showCmd,
		dupCmd,
		seedCmd,
		watchCmd,
	)
}

func (r *RootCommand) handler(name string) Command {
	command, _ := r.app.registry.Get(name)
	return command
}

func changedString(f *pflag.FlagSet, name string) *string {
	if !f.Changed(name) {
		return nil
	}
	v, _ := f.GetString(name)
	return &v
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}
