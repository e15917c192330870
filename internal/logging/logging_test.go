package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "cloudsync.log")

	closer, err := Setup(Options{Level: "warn", LogFile: logFile, Console: &console})
	require.NoError(t, err)

	slog.Info("hidden")
	slog.Warn("Deletion error", "path", "/data/a", "status", 500)
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "Deletion error")
	assert.NotContains(t, console.String(), "hidden")
	// not a terminal, no escape codes
	assert.NotContains(t, console.String(), "\x1b[")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="Deletion error" path=/data/a status=500`)
	assert.NotContains(t, string(data), "hidden")
}

func TestSetup_ConsoleOnly(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var console bytes.Buffer
	closer, err := Setup(Options{Level: "debug", Console: &console})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())

	slog.Debug("poll", "files", 3)
	assert.Contains(t, console.String(), "poll")

	_, err = Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestFanoutHandler(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	onlyErrors := slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError})

	logger := slog.New(NewFanoutHandler(debug, onlyErrors)).With("batch", "b1").WithGroup("item")
	logger.Debug("scan", "n", 1)
	logger.Error("Upload error", "path", "/data/a")

	assert.Contains(t, debugBuf.String(), "batch=b1 item.n=1")
	assert.Contains(t, debugBuf.String(), "item.path=/data/a")
	assert.NotContains(t, errorBuf.String(), "scan")
	assert.Contains(t, errorBuf.String(), "Upload error")

	boom := errors.New("disk full")
	var buf bytes.Buffer
	h := NewFanoutHandler(failingHandler{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil), err: boom}, slog.NewTextHandler(&buf, nil))
	err := slog.New(h).Handler().Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "still written", 0))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "still written")
	assert.False(t, NewFanoutHandler().Enabled(context.Background(), slog.LevelError))
}
