package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

type Options struct {
	Level   string
	LogFile string

	// rotation, lumberjack units
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	Console io.Writer
}

// Setup installs the default slog logger: colored console output plus
// a rotated plain-text log file when LogFile is set. The returned closer
// flushes and closes the file.
func Setup(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	handlers := []slog.Handler{
		tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: consoleTimeFormat,
			NoColor:    !isTerminal(console),
		}),
	}

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}

		rotator := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    withDefault(opts.MaxSizeMB, 10),
			MaxBackups: withDefault(opts.MaxBackups, 5),
			MaxAge:     withDefault(opts.MaxAgeDays, 30),
			LocalTime:  true,
		}
		closer = rotator

		handlers = append(handlers, slog.NewTextHandler(rotator, &slog.HandlerOptions{
			Level: level,
		}))
	}

	slog.SetDefault(slog.New(NewFanoutHandler(handlers...)))
	return closer, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
