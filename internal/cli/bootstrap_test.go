package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/config"
	"task-planner/internal/domain"
)

func bootstrapConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Storage.Dir = t.TempDir()
	cfg.Storage.Backend = backend
	cfg.Display.Color = false
	cfg.Display.DateFormat = "2006-01-02 15:04"
	cfg.Logging.Level = "error"
	return cfg
}

func TestBootstrap_Testing(t *testing.T) {
	var out, errOut bytes.Buffer
	app, cleanup, err := Bootstrap(context.Background(), bootstrapConfig(t, config.BackendFile), config.Testing, &out, &errOut)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, app.Run(context.Background(), []string{"add", "Buy milk"}))
	assert.Contains(t, out.String(), "Added task 1: Buy milk")
	assert.Len(t, app.api.ListTasks(domain.FilterOptions{}), 1)
}

func TestBootstrap_PersistsAcrossRuns(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := bootstrapConfig(t, backend)
			ctx := context.Background()

			var out, errOut bytes.Buffer
			app, cleanup, err := Bootstrap(ctx, cfg, config.Production, &out, &errOut)
			require.NoError(t, err)
			require.NoError(t, app.Run(ctx, []string{"seed"}))
			require.NoError(t, app.Run(ctx, []string{"add", "Persisted task"}))
			cleanup()

			out.Reset()
			app, cleanup, err = Bootstrap(ctx, cfg, config.Production, &out, &errOut)
			require.NoError(t, err)
			defer cleanup()

			items := app.api.ListTasks(domain.FilterOptions{})
			require.Len(t, items, 9)
			assert.Equal(t, "Persisted task", items[8].Title)
			assert.False(t, app.api.HasNoCompletedItems())

			require.NoError(t, app.Run(ctx, []string{"list", "persisted"}))
			assert.Contains(t, out.String(), "  9. [ ] Persisted task  (Medium priority)")
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBootstrap_WatchSeesOtherRuns(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := bootstrapConfig(t, backend)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var watchOut, watchErr syncBuffer
			watcher, cleanupWatcher, err := Bootstrap(ctx, cfg, config.Production, &watchOut, &watchErr)
			require.NoError(t, err)
			defer cleanupWatcher()

			done := make(chan error, 1)
			go func() { done <- watcher.Run(ctx, []string{"watch"}) }()
			require.Eventually(t, func() bool {
				return watchOut.String() == "Watching 0 reminders\n"
			}, 2*time.Second, 10*time.Millisecond)

			var out, errOut bytes.Buffer
			writer, cleanupWriter, err := Bootstrap(context.Background(), cfg, config.Production, &out, &errOut)
			require.NoError(t, err)
			command, _ := writer.Registry().Get("add")
			command.(*AddCommand).SetOptions(AddOptions{
				Due:      time.Now().Add(48 * time.Hour).Format("2006-01-02 15:04"),
				Reminder: true,
			})
			require.NoError(t, writer.Run(context.Background(), []string{"add", "Pay rent"}))
			cleanupWriter()

			require.Eventually(t, func() bool {
				return strings.Contains(watchOut.String(), "Task list changed: 1 task, 1 reminder\n")
			}, 5*time.Second, 20*time.Millisecond)

			cancel()
			require.NoError(t, <-done)
		})
	}
}

func TestBootstrap_FileLayout(t *testing.T) {
	cfg := bootstrapConfig(t, config.BackendFile)
	cfg.Storage.Key = "Errands"
	ctx := context.Background()

	var out, errOut bytes.Buffer
	app, cleanup, err := Bootstrap(ctx, cfg, config.Production, &out, &errOut)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, app.Run(ctx, []string{"add", "Buy milk"}))

	data, err := os.ReadFile(filepath.Join(cfg.Storage.Dir, "Errands.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"todos"`)
	assert.Contains(t, string(data), `"Buy milk"`)
}

func TestBootstrap_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *config.Config)
	}{
		{name: "unknown log level", modify: func(cfg *config.Config) { cfg.Logging.Level = "loud" }},
		{name: "unknown auth state", modify: func(cfg *config.Config) { cfg.Reminders.AuthState = "maybe" }},
		{name: "unknown backend", modify: func(cfg *config.Config) { cfg.Storage.Backend = "postgres" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := bootstrapConfig(t, config.BackendFile)
			tt.modify(cfg)

			var out, errOut bytes.Buffer
			_, _, err := Bootstrap(context.Background(), cfg, config.Production, &out, &errOut)
			assert.Error(t, err)
		})
	}
}
