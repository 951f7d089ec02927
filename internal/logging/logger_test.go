package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger(level LogLevel) (*SiteLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: "json",
		Output: &buf,
	})
	return logger, &buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestInfo_EmitsFields(t *testing.T) {
	logger, buf := newCaptureLogger(LevelInfo)

	logger.Info(context.Background(), "build finished", "built", 3)

	record := decodeRecord(t, buf)
	assert.Equal(t, "build finished", record["msg"])
	assert.Equal(t, float64(3), record["built"])
}

func TestDebug_SuppressedBelowLevel(t *testing.T) {
	logger, buf := newCaptureLogger(LevelInfo)

	logger.Debug(context.Background(), "noise")
	assert.Zero(t, buf.Len())
}

func TestError_IncludesError(t *testing.T) {
	logger, buf := newCaptureLogger(LevelError)

	logger.Error(context.Background(), errors.New("boom"), "render failed")

	record := decodeRecord(t, buf)
	assert.Equal(t, "render failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestWarn_NilErrorOmitsErrorField(t *testing.T) {
	logger, buf := newCaptureLogger(LevelWarn)

	logger.Warn(context.Background(), nil, "skipping page")

	record := decodeRecord(t, buf)
	_, present := record["error"]
	assert.False(t, present)
}

func TestWithComponent(t *testing.T) {
	logger, buf := newCaptureLogger(LevelInfo)

	logger.WithComponent("build").Info(context.Background(), "hello")

	record := decodeRecord(t, buf)
	assert.Equal(t, "build", record["component"])
}

func TestWith_AccumulatesFields(t *testing.T) {
	logger, buf := newCaptureLogger(LevelInfo)

	derived := logger.With("campaign", "summer").With("page", "index.html")
	derived.Info(context.Background(), "page built")

	record := decodeRecord(t, buf)
	assert.Equal(t, "summer", record["campaign"])
	assert.Equal(t, "index.html", record["page"])
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	logger, buf := newCaptureLogger(LevelInfo)

	_ = logger.With("campaign", "summer")
	logger.Info(context.Background(), "plain")

	record := decodeRecord(t, buf)
	_, present := record["campaign"]
	assert.False(t, present)
}

func TestNewLogger_NilConfigUsesDefaults(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.level)
}
