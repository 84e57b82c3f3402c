package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/arrivals-board/internal/board"
	"github.com/unklstewy/arrivals-board/internal/logging"
	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
	"github.com/unklstewy/arrivals-board/pkg/config"
)

var sampleRows = []arrivals.Row{
	{
		FlightNumber:      "KAL702",
		Departure:         airports.Names{Local: "나리타", International: "Narita"},
		ScheduledArrival:  "10:00",
		RemainingEstimate: "10:20",
		Status:            arrivals.StatusDelayed,
	},
	{
		FlightNumber:     "AAR101",
		Departure:        airports.Names{Local: "김해", International: "Gimhae"},
		ScheduledArrival: "10:30",
	},
}

func testApp() *app {
	recent := logging.NewRecent(10, slog.LevelInfo)
	return &app{
		cfg:    config.DefaultConfig(),
		board:  board.New(),
		loader: airports.NewLoader(airports.FileSource{}, nil),
		logger: &logging.Logger{Logger: slog.New(recent), Recent: recent},
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(board.DisplayState{Tick: 1}, sampleRows)

	for _, want := range []string{"TIME", "FLT NO", "STATUS", "KAL702", "Narita", "10:20", "DELAYED", "Gimhae"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "나리타")

	out = renderTable(board.DisplayState{Tick: 0}, sampleRows)
	assert.Contains(t, out, "도착시간")
	assert.Contains(t, out, "지연")
}

func TestTogglePin(t *testing.T) {
	d := board.DisplayState{Tick: 1}

	d = togglePin(d)
	assert.True(t, d.Pinned)
	assert.Equal(t, arrivals.LocaleEnglish, d.PinnedLocale)

	d.Tick = 2
	assert.Equal(t, arrivals.LocaleEnglish, d.Locale())

	d = togglePin(d)
	assert.False(t, d.Pinned)
	assert.Equal(t, arrivals.LocaleKorean, d.Locale())
}

func TestFormatLogEntry(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"plain", "feed attempt failed"},
		{"bracketed status", "feed attempt failed err=[429]"},
		{"color name in brackets", "feed returned status 500: [red] body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := logging.Entry{
				Time:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
				Level:   slog.LevelWarn,
				Message: tt.message,
			}

			got := formatLogEntry(e)
			assert.True(t, strings.HasPrefix(got, "[gray]10:00:00[-] [yellow]WARN [-] "), got)

			// Every character of the message must survive as visible text.
			visible := "10:00:00 WARN  " + tt.message
			assert.Equal(t, len(visible), tview.TaggedStringWidth(got))
		})
	}
}

func TestStatusTextEscapesError(t *testing.T) {
	ui := &tviewBoard{app: testApp()}
	f := &board.Frame{Err: "feed returned status 500: [red] body"}

	got := ui.statusText(board.DisplayState{}, f)
	assert.Contains(t, got, tview.Escape(f.Err))
	assert.NotContains(t, got, "[[red]")

	line := got[strings.Index(got, "[red]Last error:[-]"):]
	line = line[:strings.Index(line, "\n")]
	assert.Equal(t, len("Last error: ")+len(f.Err), tview.TaggedStringWidth(line))
}

func TestBoardTitle(t *testing.T) {
	f := &board.Frame{UpdatedAt: time.Date(2024, 5, 1, 1, 2, 3, 0, time.UTC)}
	kst := time.FixedZone("KST", 9*3600)

	assert.Equal(t, "RKSI 도착  10:02:03", boardTitle("RKSI", board.DisplayState{}, f, kst))
	assert.Equal(t, "RKSI ARRIVALS", boardTitle("RKSI", board.DisplayState{Tick: 1}, &board.Frame{}, kst))
}

func TestWriteBoard(t *testing.T) {
	a := testApp()
	a.locale = arrivals.LocaleEnglish

	var buf bytes.Buffer
	require.NoError(t, a.writeBoard(&buf, a.board.Frame()))
	assert.Contains(t, buf.String(), "No inbound flights")

	a.cfg.Display.RowsPerPage = 1
	f := a.board.Publish(sampleRows, time.Now(), time.Now())

	buf.Reset()
	require.NoError(t, a.writeBoard(&buf, f))
	out := buf.String()
	assert.Contains(t, out, "RKSI ARRIVALS")
	assert.Contains(t, out, "KAL702")
	assert.Contains(t, out, "AAR101")
	// one table per page
	assert.Equal(t, 2, strings.Count(out, "FLT NO"))
}

func TestTeaModelUpdate(t *testing.T) {
	a := testApp()
	events := make(chan board.Event)
	m := teaModel{app: a, events: events, frame: a.board.Frame()}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = next.(teaModel)
	assert.True(t, m.display.Pinned)

	f := &board.Frame{Rows: sampleRows, Cycle: 3}
	next, cmd := m.Update(eventMsg(board.Event{Kind: board.EventFrame, Frame: f, Tick: 5}))
	m = next.(teaModel)
	assert.NotNil(t, cmd)
	assert.Equal(t, uint64(5), m.display.Tick)
	assert.Same(t, f, m.frame)
	assert.Contains(t, m.View(), "KAL702")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
