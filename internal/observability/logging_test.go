package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextValues(t *testing.T) {
	ctx := WithStage(WithRunID(context.Background(), "run-1"), "build")
	lc := FromContext(ctx)
	require.Equal(t, "run-1", lc.RunID)
	require.Equal(t, "build", lc.Stage)

	ctx = WithStage(ctx, "execute")
	require.Equal(t, "run-1", FromContext(ctx).RunID)
	require.Equal(t, "execute", FromContext(ctx).Stage)
}

func TestFromContext_Empty(t *testing.T) {
	require.Equal(t, LogContext{}, FromContext(context.Background()))
}

func TestInfoContext_AddsAttributes(t *testing.T) {
	buf := captureDefault(t)
	ctx := WithStage(WithRunID(context.Background(), "run-1"), "build")

	InfoContext(ctx, "hello", slog.String("extra", "x"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "hello", record["msg"])
	require.Equal(t, "run-1", record["run_id"])
	require.Equal(t, "build", record["stage"])
	require.Equal(t, "x", record["extra"])
}

func TestDebugContext_WithoutContextValues(t *testing.T) {
	buf := captureDefault(t)
	DebugContext(context.Background(), "plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.NotContains(t, record, "run_id")
	require.NotContains(t, record, "stage")
}
