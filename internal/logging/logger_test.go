package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{input: "debug", expected: LevelDebug},
		{input: "INFO", expected: LevelInfo},
		{input: "", expected: LevelInfo},
		{input: "warning", expected: LevelWarn},
		{input: "error", expected: LevelError},
		{input: "loud", expected: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestPorterLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("porter").With("template_id", "test_render_php").
		Info(context.Background(), "created template handle", "cached", true)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "created template handle", entry["msg"])
	assert.Equal(t, "porter", entry["component"])
	assert.Equal(t, "test_render_php", entry["template_id"])
	assert.Equal(t, true, entry["cached"])
}

func TestPorterLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "hidden debug")
	logger.Info(context.Background(), "hidden info")
	logger.Warn(context.Background(), nil, "visible warn")
	logger.Error(context.Background(), errors.New("boom"), "visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
	assert.Contains(t, out, "visible error")
	assert.Contains(t, out, "boom")
}

func TestPorterLogger_WithIgnoresDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	logger.With("a", 1, "dangling").Info(context.Background(), "msg")

	out := buf.String()
	assert.Contains(t, out, "a=1")
	assert.False(t, strings.Contains(out, "dangling"))
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "discarded")
	})
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewFileLogger(&LoggerConfig{Level: LevelInfo}, dir)
	require.NoError(t, err)

	logger.Info(context.Background(), "written to file")
	require.NoError(t, logger.Close())

	assert.Equal(t, dir, filepath.Dir(logger.Path()))
	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

	logger.StartOperation("render").End(context.Background())
	assert.Contains(t, buf.String(), "operation=render")
	assert.Contains(t, buf.String(), "Operation completed")

	buf.Reset()
	logger.StartOperation("render").EndWithError(context.Background(), errors.New("failed"))
	assert.Contains(t, buf.String(), "Operation failed")
}

func TestStartOperation_AnyLogger(t *testing.T) {
	var buf bytes.Buffer
	var logger Logger = NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf}).WithComponent("file")

	StartOperation(logger, "compile").End(context.Background(), "path", "/templates/page.html")
	assert.Contains(t, buf.String(), "operation=compile")
	assert.Contains(t, buf.String(), "path=/templates/page.html")
	assert.Contains(t, buf.String(), "duration_ms=")

	assert.NotPanics(t, func() {
		StartOperation(nil, "compile").End(context.Background())
	})
}
