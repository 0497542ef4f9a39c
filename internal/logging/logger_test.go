package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*IndexLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Format = "json"
	cfg.Output = &buf
	return NewLogger(cfg), &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String(), "below-threshold messages are dropped")

	logger.Warn(ctx, nil, "warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestLoggerFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	logger.Info(context.Background(), "scan complete", "pages", 3, "entries", 12)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "scan complete", record["msg"])
	assert.Equal(t, float64(3), record["pages"])
	assert.Equal(t, float64(12), record["entries"])
}

func TestLoggerErrorField(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	logger.Error(context.Background(), fmt.Errorf("boom"), "operation failed")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "boom", record["error"])
}

func TestLoggerWithComponent(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo)
	logger := base.WithComponent("scanner")

	logger.Info(context.Background(), "hello")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "scanner", record["component"])
}

func TestLoggerWith(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo)
	logger := base.With("request_id", "abc123")

	logger.Info(context.Background(), "handling")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "abc123", record["request_id"])
}
