// Package logging builds the structured logger shared by every component.
//
// Interactive boards own the terminal, so they log JSON to a rotated file.
// Headless and one-shot runs log text to stderr instead.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unklstewy/arrivals-board/pkg/config"
)

// FileName is the log file written under LoggingConfig.Dir.
const FileName = "arrivals-board.slog"

type Logger struct {
	*slog.Logger

	// LogFile is empty when logging to stderr
	LogFile string
	Start   time.Time

	// Recent holds the tail of the log for on-screen display; may be nil
	Recent *Recent

	closer io.Closer
}

// Options selects where log records go.
type Options struct {
	// Console logs text to Stderr instead of the rotated file
	Console bool

	// Stderr overrides os.Stderr for console output
	Stderr io.Writer

	// RecentLines keeps the last N records in memory (0 = disabled)
	RecentLines int
}

// ParseLevel maps a config level string to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}

func New(cfg config.LoggingConfig, opts Options) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	l := &Logger{Start: time.Now()}

	var h slog.Handler
	if opts.Console {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		h = slog.NewTextHandler(w, hopts)
	} else {
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		w := &lumberjack.Logger{
			Filename:   filepath.Join(dir, FileName),
			MaxSize:    cfg.MaxSizeMB, // MB
			MaxBackups: cfg.MaxBackups,
		}
		if lvl == slog.LevelDebug && w.MaxSize < 128 {
			w.MaxSize = 128
		}
		h = slog.NewJSONHandler(w, hopts)
		l.LogFile = w.Filename
		l.closer = w
	}

	if opts.RecentLines > 0 {
		l.Recent = NewRecent(opts.RecentLines, lvl)
		h = fanout{h, l.Recent}
	}

	l.Logger = slog.New(h)
	l.Info("Hello logging", slog.Time("start", l.Start))
	l.Info("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	return l, nil
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// fanout sends every record to all handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
