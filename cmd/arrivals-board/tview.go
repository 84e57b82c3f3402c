package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/arrivals-board/internal/board"
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
)

// logPanelLines is how many recent log lines the log panel shows
const logPanelLines = 50

// tviewBoard is the full-screen terminal board: two arrival tables side
// by side above a status panel and a log panel.
type tviewBoard struct {
	app *app

	// UI components
	tv     *tview.Application
	tables [2]*tview.Table
	status *tview.TextView
	logs   *tview.TextView

	// State
	mu      sync.Mutex
	display board.DisplayState
	frame   *board.Frame
}

func newTviewBoard(a *app) *tviewBoard {
	ui := &tviewBoard{
		app:   a,
		tv:    tview.NewApplication(),
		frame: a.board.Frame(),
	}
	ui.display.Tick = a.board.Tick()
	ui.setupUI()
	return ui
}

// setupUI initializes the user interface
func (ui *tviewBoard) setupUI() {
	for i := range ui.tables {
		t := tview.NewTable().
			SetFixed(1, 0).
			SetSelectable(false, false)
		t.SetBorder(true)
		ui.tables[i] = t
	}

	ui.status = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.status.SetBorder(true).SetTitle(" Status ")

	ui.logs = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(logPanelLines)
	ui.logs.SetBorder(true).SetTitle(" Logs ")

	boards := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.tables[0], 0, 1, false).
		AddItem(ui.tables[1], 0, 1, false)

	footer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.status, 0, 2, false).
		AddItem(ui.logs, 0, 3, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(boards, 0, 3, false).
		AddItem(footer, 0, 1, false)

	ui.tv.SetRoot(root, true)
	ui.tv.SetInputCapture(ui.handleKeyboard)
	ui.redraw()
}

// handleKeyboard handles keyboard input
func (ui *tviewBoard) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
		ui.tv.Stop()
		return nil

	case event.Rune() == 'r':
		ui.app.poller.Refresh()
		ui.app.logger.Info("manual refresh requested")
		return nil

	case event.Rune() == 'l':
		ui.mu.Lock()
		ui.display = togglePin(ui.display)
		ui.mu.Unlock()
		ui.redraw()
		return nil
	}
	return event
}

// apply records a board event. Must run on the tview goroutine.
func (ui *tviewBoard) apply(ev board.Event) {
	ui.mu.Lock()
	ui.frame = ev.Frame
	ui.display.Tick = ev.Tick
	ui.mu.Unlock()
	ui.redraw()
}

// redraw repaints every panel from the current frame and display state
func (ui *tviewBoard) redraw() {
	ui.mu.Lock()
	display, frame := ui.display, ui.frame
	ui.mu.Unlock()

	cfg := ui.app.cfg
	pages := board.Pages(frame.Rows, cfg.Display.RowsPerPage)
	title := boardTitle(cfg.Destination.Code, display, frame, cfg.Destination.Location())
	for i, t := range ui.tables {
		t.SetTitle(fmt.Sprintf(" %s (%d/2) ", title, i+1))
		fillTable(t, display, pages[i], cfg.Display.RowsPerPage)
	}

	ui.status.SetText(ui.statusText(display, frame))

	var sb strings.Builder
	if recent := ui.app.logger.Recent; recent != nil {
		entries := recent.Entries()
		if len(entries) > logPanelLines {
			entries = entries[len(entries)-logPanelLines:]
		}
		for _, e := range entries {
			sb.WriteString(formatLogEntry(e))
			sb.WriteByte('\n')
		}
	}
	ui.logs.SetText(sb.String())
	ui.logs.ScrollToEnd()
}

// fillTable writes the header and one page of rows, blanking unused rows
// so the board keeps a fixed height.
func fillTable(t *tview.Table, display board.DisplayState, rows []arrivals.Row, perPage int) {
	headers := display.Headers()
	for col, h := range headers {
		t.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1))
	}

	for i := 0; i < perPage; i++ {
		var cells [5]string
		var delayed bool
		if i < len(rows) {
			cells = display.Cells(rows[i])
			delayed = rows[i].Status == arrivals.StatusDelayed
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetTextColor(tcell.ColorWhite).
				SetExpansion(1)
			if col == statusColumn && delayed {
				cell.SetBackgroundColor(tcell.ColorRed)
			}
			t.SetCell(i+1, col, cell)
		}
	}
}

func (ui *tviewBoard) statusText(display board.DisplayState, f *board.Frame) string {
	cfg := ui.app.cfg
	var text string

	text += fmt.Sprintf("[yellow]DEST:[-] [white]%s[-]  [yellow]POLICY:[-] [white]%s[-]\n",
		cfg.Destination.Code, cfg.Policy.Name)
	if f.UpdatedAt.IsZero() {
		text += "[gray]Waiting for first feed snapshot...[-]\n"
	} else {
		text += fmt.Sprintf("[gray]Updated:[-] [white]%s[-]  [gray]Cycle:[-] [white]%d[-]\n",
			f.UpdatedAt.In(cfg.Destination.Location()).Format("15:04:05"), f.Cycle)
	}
	text += fmt.Sprintf("[gray]Flights:[-] [white]%d[-]  [gray]Airports:[-] [white]%d[-]\n",
		len(f.Rows), ui.app.loader.Directory().Len())

	locale := "한국어"
	if display.Locale() == arrivals.LocaleEnglish {
		locale = "English"
	}
	if display.Pinned {
		locale += " (pinned)"
	}
	text += fmt.Sprintf("[gray]Locale:[-] [white]%s[-]\n", locale)

	if f.Err != "" {
		text += fmt.Sprintf("[red]Last error:[-] %s\n", tview.Escape(f.Err))
	}

	text += "\n[gray]q[-] quit  [gray]r[-] refresh  [gray]l[-] pin locale"
	return text
}

// runTview runs the board until the user quits or ctx is cancelled.
func (a *app) runTview(ctx context.Context) error {
	return newTviewBoard(a).run(ctx, nil)
}

// run drives the tview loop on screen (the terminal when nil) and relays
// board events into it until the loop exits.
func (ui *tviewBoard) run(ctx context.Context, screen tcell.Screen) error {
	if screen != nil {
		ui.tv.SetScreen(screen)
	}

	events, unsubscribe := ui.app.board.Subscribe(16)
	defer unsubscribe()

	done := make(chan struct{})
	relayed := make(chan struct{})
	go func() {
		defer close(relayed)
		ui.relay(ctx, events, done)
	}()

	err := ui.tv.Run()
	close(done)
	<-relayed
	return err
}

// relay applies board events on the tview goroutine. It returns once done
// is closed, even with an update still waiting in the tview queue.
func (ui *tviewBoard) relay(ctx context.Context, events <-chan board.Event, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			ui.tv.Stop()
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ui.queue(done, func() { ui.apply(ev) }) {
				return
			}
		}
	}
}

// queue hands f to the tview loop and waits for it to run. It reports false
// when the loop exits first. QueueUpdateDraw never returns after Run has
// returned, so the call is left parked in its own goroutine.
func (ui *tviewBoard) queue(done <-chan struct{}, f func()) bool {
	select {
	case <-done:
		return false
	default:
	}

	applied := make(chan struct{})
	go func() {
		ui.tv.QueueUpdateDraw(f)
		close(applied)
	}()

	select {
	case <-applied:
		return true
	case <-done:
		return false
	}
}
