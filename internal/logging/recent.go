package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Entry is one formatted log record kept for display.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// Recent is a slog.Handler that keeps the last N records in memory.
type Recent struct {
	mu      *sync.Mutex
	entries *[]Entry
	max     int
	level   slog.Leveler
	attrs   []slog.Attr
}

func NewRecent(max int, level slog.Leveler) *Recent {
	entries := make([]Entry, 0, max)
	return &Recent{
		mu:      &sync.Mutex{},
		entries: &entries,
		max:     max,
		level:   level,
	}
}

// Entries returns a copy of the kept records, oldest first.
func (r *Recent) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

func (r *Recent) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= r.level.Level()
}

func (r *Recent) Handle(_ context.Context, rec slog.Record) error {
	var sb strings.Builder
	sb.WriteString(rec.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range r.attrs {
		write(a)
	}
	rec.Attrs(write)

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(*r.entries) == r.max {
		copy(*r.entries, (*r.entries)[1:])
		*r.entries = (*r.entries)[:r.max-1]
	}
	*r.entries = append(*r.entries, Entry{Time: rec.Time, Level: rec.Level, Message: sb.String()})
	return nil
}

// WithAttrs shares the buffer with the parent handler.
func (r *Recent) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *r
	clone.attrs = append(append([]slog.Attr{}, r.attrs...), attrs...)
	return &clone
}

// WithGroup is flattened; groups are not rendered on screen.
func (r *Recent) WithGroup(string) slog.Handler {
	return r
}
