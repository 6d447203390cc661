package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDebugEnabled(t *testing.T) {
	t.Setenv(DebugEnv, "")
	assert.False(t, DebugEnabled())

	t.Setenv(DebugEnv, "1")
	assert.True(t, DebugEnabled())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "", want: zapcore.InfoLevel},
		{input: "debug", want: zapcore.DebugLevel},
		{input: "WARN", want: zapcore.WarnLevel},
		{input: "error", want: zapcore.ErrorLevel},
		{input: "loud", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	t.Setenv(DebugEnv, "")
	var buf bytes.Buffer

	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("task saved", zap.String("id", "abc"))
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "task saved", entry["msg"])
	assert.Equal(t, "abc", entry["id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DebugOverride(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	var buf bytes.Buffer

	logger, err := New(Options{Level: "error", Format: "console", Output: &buf})
	require.NoError(t, err)

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNewObserved(t *testing.T) {
	logger, logs := NewObserved(zapcore.WarnLevel)

	logger.Info("ignored")
	logger.Warn("load fell back", zap.String("reason", "corrupt"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "corrupt", logs.All()[0].ContextMap()["reason"])
	assert.NotNil(t, OrNop(nil))
}
