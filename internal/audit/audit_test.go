package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStdLogger_Record(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.Record(context.Background(), Event{
		Type:       "auth",
		Path:       "/run_step",
		Mode:       "hmac",
		Decision:   DecisionDeny,
		RemoteAddr: "10.0.0.1:5555",
		RequestID:  "req-1",
	})

	line := buf.String()
	require.Contains(t, line, "level=WARN")
	require.Contains(t, line, "msg=audit")
	require.Contains(t, line, "mode=hmac")
	require.Contains(t, line, "decision=deny")
	require.Contains(t, line, "request_id=req-1")
}

func TestStdLogger_AllowIsInfo(t *testing.T) {
	var buf bytes.Buffer
	New(slog.New(slog.NewTextHandler(&buf, nil))).Record(context.Background(), Event{Type: "auth", Decision: DecisionAllow})
	require.Contains(t, buf.String(), "level=INFO")
}

func TestStdLogger_NilSafe(t *testing.T) {
	var nilLogger *StdLogger
	nilLogger.Record(context.Background(), Event{})
	New(nil).Record(context.Background(), Event{})
}
