package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/arrivals-board/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "warn"}, Options{Console: true, Stderr: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.Info("hidden")
	l.Warn("feed failed", slog.String("callsign", "KAL702"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "feed failed")
	assert.Contains(t, out, "callsign=KAL702")
	assert.Empty(t, l.LogFile)
}

func TestNewFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(config.LoggingConfig{Level: "info", Dir: dir, MaxSizeMB: 1, MaxBackups: 1}, Options{})
	require.NoError(t, err)

	l.Info("board refreshed", slog.Int("rows", 3))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"board refreshed"`)
	assert.Contains(t, string(data), `"rows":3`)
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, Options{Console: true})
	assert.Error(t, err)
}

func TestRecent(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "info"}, Options{Console: true, Stderr: &buf, RecentLines: 3})
	require.NoError(t, err)
	require.NotNil(t, l.Recent)

	l.With(slog.String("component", "poller")).Warn("one")
	l.Info("two")
	l.Info("three")
	l.Debug("ignored")

	entries := l.Recent.Entries()
	require.Len(t, entries, 3)
	// New logs two startup lines, the buffer keeps only the last three.
	assert.Equal(t, "one component=poller", entries[0].Message)
	assert.Equal(t, slog.LevelWarn, entries[0].Level)
	assert.Equal(t, "three", entries[2].Message)

	// console output still receives everything
	assert.Contains(t, buf.String(), "msg=two")
}
