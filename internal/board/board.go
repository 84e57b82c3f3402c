// Package board holds the live state of the arrivals board and the poller
// that keeps it current.
//
// The Board is written only by the Poller. Renderers and the HTTP API read
// the current Frame and subscribe to change events.
package board

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unklstewy/arrivals-board/pkg/arrivals"
)

// Frame is one fully computed board. Frames are never modified after
// they are published; each cycle publishes a new one.
type Frame struct {
	Rows []arrivals.Row `json:"rows"`

	// UpdatedAt is when the rows were computed
	UpdatedAt time.Time `json:"updated_at"`

	// FeedUpdatedAt is the feed's own timestamp for the snapshot used
	FeedUpdatedAt time.Time `json:"feed_updated_at"`

	// Cycle counts successful poll cycles
	Cycle uint64 `json:"cycle"`

	// Err is the most recent poll failure since the last success
	Err string `json:"error,omitempty"`
}

// EventKind tells subscribers what changed.
type EventKind int

const (
	EventFrame EventKind = iota
	EventTick
)

// Event is delivered to subscribers when a frame is published or the
// display tick advances.
type Event struct {
	Kind  EventKind
	Frame *Frame
	Tick  uint64
}

type Board struct {
	frame atomic.Pointer[Frame]
	tick  atomic.Uint64

	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func New() *Board {
	b := &Board{subs: make(map[chan Event]struct{})}
	b.frame.Store(&Frame{})
	return b
}

// Frame returns the current frame. Never nil.
func (b *Board) Frame() *Frame {
	return b.frame.Load()
}

// Tick returns the current display tick.
func (b *Board) Tick() uint64 {
	return b.tick.Load()
}

// Publish replaces the board with a successful cycle's rows.
func (b *Board) Publish(rows []arrivals.Row, computedAt, feedUpdatedAt time.Time) *Frame {
	prev := b.frame.Load()
	f := &Frame{
		Rows:          rows,
		UpdatedAt:     computedAt,
		FeedUpdatedAt: feedUpdatedAt,
		Cycle:         prev.Cycle + 1,
	}
	b.frame.Store(f)
	b.broadcast(Event{Kind: EventFrame, Frame: f, Tick: b.Tick()})
	return f
}

// Fail records a failed cycle. The previous rows stay on the board.
func (b *Board) Fail(err error) *Frame {
	prev := b.frame.Load()
	f := *prev
	f.Err = err.Error()
	b.frame.Store(&f)
	b.broadcast(Event{Kind: EventFrame, Frame: &f, Tick: b.Tick()})
	return &f
}

// Advance moves the display tick forward and returns the new value.
func (b *Board) Advance() uint64 {
	t := b.tick.Add(1)
	b.broadcast(Event{Kind: EventTick, Frame: b.Frame(), Tick: t})
	return t
}

// Subscribe returns a channel receiving board events and a function that
// unsubscribes and closes it. Events are dropped for subscribers whose
// buffer is full.
func (b *Board) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Board) broadcast(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
