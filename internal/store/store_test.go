package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"task-planner/internal/domain"
	apperrors "task-planner/internal/errors"
	"task-planner/internal/logging"
	"task-planner/internal/metrics"
	"task-planner/internal/repository"
	"task-planner/internal/testutil"
)

func TestTaskStore_LoadMissingBlob(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := New(repository.NewMemoryStore(), WithMetrics(m))

	list := s.Load(context.Background())

	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LoadFallbacksTotal.WithLabelValues("missing")))
}

func TestTaskStore_LoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	blobs := repository.NewMemoryStore()
	require.NoError(t, blobs.Write(ctx, DefaultKey, []byte("{not json")))

	logger, logs := logging.NewObserved(zapcore.WarnLevel)
	m := metrics.New(prometheus.NewRegistry())
	s := New(blobs, WithLogger(logger), WithMetrics(m))

	var list domain.TaskList
	assert.NotPanics(t, func() { list = s.Load(ctx) })

	assert.Empty(t, list)
	assert.True(t, s.Items().IsEmpty())
	assert.Equal(t, 1, logs.FilterMessage("task list is corrupt, starting empty").Len())
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LoadFallbacksTotal.WithLabelValues("corrupt")))
}

func TestTaskStore_LoadReadError(t *testing.T) {
	blobs := testutil.NewFailingBlobStore()
	blobs.ReadErr = apperrors.NewPermissionError("read", "TodoList.json")
	s := New(blobs)

	list := s.Load(context.Background())

	assert.Empty(t, list)
}

func TestTaskStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	blobs := repository.NewMemoryStore()

	first := New(blobs)
	require.NoError(t, first.Save(ctx, sampleList()))

	second := New(blobs)
	loaded := second.Load(ctx)

	assert.Equal(t, sampleList(), loaded)
	assert.Equal(t, sampleList(), second.Items())
}

func TestTaskStore_CustomKey(t *testing.T) {
	ctx := context.Background()
	blobs := repository.NewMemoryStore()
	s := New(blobs, WithKey("work"))

	require.NoError(t, s.Save(ctx, sampleList()[:1]))

	_, err := blobs.Read(ctx, DefaultKey)
	assert.ErrorIs(t, err, repository.ErrBlobNotFound)
	_, err = blobs.Read(ctx, "work")
	assert.NoError(t, err)
}

func TestTaskStore_SaveFailureKeepsMemory(t *testing.T) {
	blobs := testutil.NewFailingBlobStore()
	blobs.WriteErr = errors.New("disk full")
	m := metrics.New(prometheus.NewRegistry())
	logger, logs := logging.NewObserved(zapcore.ErrorLevel)
	s := New(blobs, WithMetrics(m), WithLogger(logger))

	err := s.Save(context.Background(), sampleList())

	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))
	assert.Equal(t, sampleList(), s.Items())
	assert.Equal(t, 1, blobs.Writes())
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.PersistFailuresTotal))
	assert.Equal(t, 1, logs.Len())
}

func TestTaskStore_SaveAdoptsCopy(t *testing.T) {
	s := New(repository.NewMemoryStore())
	list := sampleList()

	require.NoError(t, s.Save(context.Background(), list))
	list[0].Title = "mutated after save"

	assert.Equal(t, "Study for math exam", s.Items()[0].Title)
}

func TestTaskStore_Find(t *testing.T) {
	s := New(repository.NewMemoryStore())
	require.NoError(t, s.Save(context.Background(), sampleList()))

	i, ok := s.Find("3c4d")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = s.Find("nope")
	assert.False(t, ok)
}

func TestTaskStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := New(repository.NewMemoryStore())

	var seen []int
	unsubscribe := s.Subscribe(func(list domain.TaskList) {
		seen = append(seen, len(list))
	})

	require.NoError(t, s.Save(ctx, sampleList()))
	s.Load(ctx)
	unsubscribe()
	require.NoError(t, s.Save(ctx, domain.TaskList{}))

	assert.Equal(t, []int{3, 3}, seen)
}

func TestTaskStore_SubscribersNotifiedOnFailedSave(t *testing.T) {
	blobs := testutil.NewFailingBlobStore()
	blobs.WriteErr = errors.New("read-only filesystem")
	s := New(blobs)

	notified := 0
	s.Subscribe(func(domain.TaskList) { notified++ })

	_ = s.Save(context.Background(), sampleList())

	assert.Equal(t, 1, notified)
}

func TestTaskStore_ReloadAdoptsOutsideChanges(t *testing.T) {
	ctx := context.Background()
	blobs := repository.NewMemoryStore()
	reader := New(blobs)
	writer := New(blobs)
	reader.Load(ctx)

	var seen []int
	reader.Subscribe(func(list domain.TaskList) { seen = append(seen, len(list)) })

	require.NoError(t, writer.Save(ctx, sampleList()))
	list, err := reader.Reload(ctx)

	require.NoError(t, err)
	assert.Equal(t, sampleList(), list)
	assert.Equal(t, sampleList(), reader.Items())
	assert.Equal(t, []int{3}, seen)
}

func TestTaskStore_ReloadMissingBlobEmpties(t *testing.T) {
	ctx := context.Background()
	s := New(repository.NewMemoryStore())
	s.Load(ctx)
	s.items = sampleList()

	list, err := s.Reload(ctx)

	require.NoError(t, err)
	assert.Empty(t, list)
	assert.True(t, s.Items().IsEmpty())
}

func TestTaskStore_ReloadFailureKeepsList(t *testing.T) {
	ctx := context.Background()

	t.Run("corrupt", func(t *testing.T) {
		blobs := repository.NewMemoryStore()
		s := New(blobs)
		require.NoError(t, s.Save(ctx, sampleList()))
		require.NoError(t, blobs.Write(ctx, DefaultKey, []byte(`{"todos":[{"priority":"high"}]}`)))

		list, err := s.Reload(ctx)

		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, sampleList(), list)
		assert.Equal(t, sampleList(), s.Items())
	})

	t.Run("read error", func(t *testing.T) {
		blobs := testutil.NewFailingBlobStore()
		s := New(blobs)
		require.NoError(t, s.Save(ctx, sampleList()))
		blobs.ReadErr = errors.New("database is locked")

		_, err := s.Reload(ctx)

		assert.EqualError(t, err, "database is locked")
		assert.Len(t, s.Items(), 3)
	})
}
