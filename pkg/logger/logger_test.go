package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDefault swaps the default logger for one writing to a buffer.
func captureDefault(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(New(&buf, level, "test-service"))
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"", ""},
		{"host=localhost password=secret dbname=todo", "host=localhost password=*** dbname=todo"},
		{"host=localhost password=secret", "host=localhost password=***"},
		{"postgres://u@h/db?sslmode=disable&password=secret&x=1", "postgres://u@h/db?sslmode=disable&password=***&x=1"},
		{"host=localhost dbname=todo", "host=localhost dbname=todo"},
		{"postgres://todo:s3cret@db:5432/todo", "postgres://todo:xxxxx@db:5432/todo"},
		{"postgres://todo:s3cret@db:5432/todo?sslmode=disable", "postgres://todo:xxxxx@db:5432/todo?sslmode=disable"},
		{"postgres://todo@db:5432/todo", "postgres://todo@db:5432/todo"},
		{"postgres://todo:s3cret@db:bad-port/todo", "***"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskPassword(tt.dsn))
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestLogTaskOperation_Levels(t *testing.T) {
	buf := captureDefault(t, slog.LevelDebug)
	ctx := context.Background()

	LogTaskOperation(ctx, "GetTask", 7, time.Millisecond, nil, false)
	rec := lastRecord(t, buf)
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, 7.0, rec["task_id"])
	assert.Equal(t, "test-service", rec["service"])

	LogTaskOperation(ctx, "GetTask", 7, time.Millisecond, errors.New("not found"), true)
	assert.Equal(t, "WARN", lastRecord(t, buf)["level"])

	LogTaskOperation(ctx, "ListAll", 0, time.Millisecond, errors.New("db down"), false)
	rec = lastRecord(t, buf)
	assert.Equal(t, "ERROR", rec["level"])
	assert.NotContains(t, rec, "task_id")
}

func TestLogHTTPRequest_LevelByStatus(t *testing.T) {
	buf := captureDefault(t, slog.LevelDebug)
	ctx := context.Background()

	LogHTTPRequest(ctx, "GET", "/api/tasks", "test", "id", time.Millisecond, 200)
	assert.Equal(t, "INFO", lastRecord(t, buf)["level"])

	LogHTTPRequest(ctx, "GET", "/api/tasks/9", "test", "id", time.Millisecond, 404)
	assert.Equal(t, "WARN", lastRecord(t, buf)["level"])

	LogHTTPRequest(ctx, "GET", "/api/tasks", "test", "id", time.Millisecond, 500)
	assert.Equal(t, "ERROR", lastRecord(t, buf)["level"])
}

func TestLogDatabaseConnection_MasksDSN(t *testing.T) {
	buf := captureDefault(t, slog.LevelInfo)

	LogDatabaseConnection(context.Background(), "host=db password=hunter2", "connect", nil)
	rec := lastRecord(t, buf)
	assert.Equal(t, "host=db password=***", rec["dsn"])
	assert.NotContains(t, buf.String(), "hunter2")

	LogDatabaseConnection(context.Background(), "postgres://todo:hunter3@db:5432/todo", "connect", errors.New("refused"))
	rec = lastRecord(t, buf)
	assert.Equal(t, "postgres://todo:xxxxx@db:5432/todo", rec["dsn"])
	assert.NotContains(t, buf.String(), "hunter3")
}

func TestLogStartupBanner(t *testing.T) {
	buf := captureDefault(t, slog.LevelInfo)

	LogStartupBanner("http://localhost:8080", []Endpoint{
		{Method: "GET", Path: "/api/tasks", Description: "List tasks"},
	})
	rec := lastRecord(t, buf)
	assert.Equal(t, "http://localhost:8080", rec["base_url"])
	endpoints, ok := rec["endpoints"].([]any)
	require.True(t, ok)
	require.Len(t, endpoints, 1)
	assert.Contains(t, endpoints[0], "/api/tasks")
}

func TestRequestIDContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "unknown", RequestIDFromContext(context.Background()))
}

func TestWithRequestID(t *testing.T) {
	buf := captureDefault(t, slog.LevelInfo)

	WithRequestID("req-7").Info("tagged")
	rec := lastRecord(t, buf)
	assert.Equal(t, "req-7", rec["request_id"])
	assert.Equal(t, "tagged", rec["msg"])
}

func TestSetupLogger_WritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	require.NoError(t, SetupLogger(Config{Level: "info", FilePath: dir, FileName: "out.log"}, "todo-service"))

	slog.Info("hello file")

	data, err := os.ReadFile(filepath.Join(dir, "out.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
