package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/domain"
	"task-planner/internal/testutil"
)

func sampleList() domain.TaskList {
	return domain.TaskList{
		{
			ID:              "9f0c",
			Title:           "Study for math exam",
			Description:     "Chapters 3 and 4",
			Priority:        domain.PriorityHigh,
			DueDate:         domain.DueDate{Year: 2030, Month: 5, Day: 25, Hour: 14, Minute: 15},
			NotificationID:  "n-9f0c",
			HasNotification: true,
		},
		{
			ID:             "1a2b",
			Title:          "Buy milk",
			Priority:       domain.PriorityMedium,
			IsCompleted:    true,
			NotificationID: "n-1a2b",
		},
		{
			ID:             "3c4d",
			Title:          "Call plumber",
			Priority:       domain.PriorityLow,
			NotificationID: "n-3c4d",
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec(testutil.SequentialIDs("gen"))

	tests := []struct {
		name string
		list domain.TaskList
	}{
		{name: "empty", list: domain.TaskList{}},
		{name: "single", list: sampleList()[:1]},
		{name: "ordered", list: sampleList()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := codec.Encode(tt.list)
			require.NoError(t, err)

			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.list, decoded)
		})
	}
}

func TestCodec_EncodeKeys(t *testing.T) {
	data, err := NewCodec(nil).Encode(sampleList()[:1])
	require.NoError(t, err)

	var doc map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc["todos"], 1)

	rec := doc["todos"][0]
	for _, key := range []string{"id", "title", "description", "priority", "isCompleted", "dueDate", "notificationId", "hasNotification"} {
		assert.Contains(t, rec, key)
	}
	assert.Equal(t, 2.0, rec["priority"])
	assert.Equal(t, map[string]interface{}{"year": 2030.0, "month": 5.0, "day": 25.0, "hour": 14.0, "minute": 15.0}, rec["dueDate"])

	empty, err := NewCodec(nil).Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"todos":[]}`, string(empty))
}

func TestCodec_DecodeDefaults(t *testing.T) {
	codec := NewCodec(testutil.SequentialIDs("gen"))

	list, err := codec.Decode([]byte(`{"todos":[{"title":"Bare"},{"id":"x","notificationId":"nx","priority":9}],"extra":true}`))

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.TaskItem{
		ID:             "gen-1",
		Title:          "Bare",
		Priority:       domain.PriorityMedium,
		NotificationID: "gen-2",
	}, list[0])
	assert.True(t, list[0].DueDate.IsZero())
	assert.False(t, list[0].HasNotification)
	assert.Equal(t, domain.PriorityMedium, list[1].Priority)
	assert.Equal(t, "nx", list[1].NotificationID)
}

func TestCodec_DecodeNullFields(t *testing.T) {
	codec := NewCodec(testutil.SequentialIDs("gen"))

	data := `{"todos":[{"id":null,"title":"Nulls","description":null,"priority":null,` +
		`"isCompleted":null,"dueDate":null,"notificationId":null,"hasNotification":null},` +
		`{"id":"y","notificationId":"ny","dueDate":{"year":2030,"month":1,"day":2,"hour":null,"minute":null}}]}`
	list, err := codec.Decode([]byte(data))

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.TaskItem{
		ID:             "gen-1",
		Title:          "Nulls",
		Priority:       domain.PriorityMedium,
		NotificationID: "gen-2",
	}, list[0])
	assert.Equal(t, domain.DueDate{Year: 2030, Month: 1, Day: 2}, list[1].DueDate)
	assert.Equal(t, domain.PriorityMedium, list[1].Priority)
}

func TestCodec_DecodeNullTodos(t *testing.T) {
	list, err := NewCodec(nil).Decode([]byte(`{"todos":null}`))

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCodec_DecodeMissingTodos(t *testing.T) {
	list, err := NewCodec(nil).Decode([]byte(`{}`))

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCodec_DecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{name: "not json", data: `{"todos": [`},
		{name: "empty", data: ``},
		{name: "wrong root type", data: `[]`},
		{name: "priority as string", data: `{"todos":[{"priority":"high"}]}`, path: "todos.0.priority"},
		{name: "fractional priority", data: `{"todos":[{"priority":1.5}]}`, path: "todos.0.priority"},
		{name: "flag as string", data: `{"todos":[{"hasNotification":"yes"}]}`, path: "todos.0.hasNotification"},
		{name: "due date component", data: `{"todos":[{"dueDate":{"year":"2024"}}]}`, path: "todos.0.dueDate.year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(nil).Decode([]byte(tt.data))
			require.Error(t, err)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			if tt.path != "" {
				assert.Equal(t, tt.path, decodeErr.Path)
			}
		})
	}
}
