package main

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/arrivals-board/internal/board"
)

// eventMsg carries a board event into the bubbletea update loop
type eventMsg board.Event

// closedMsg means the board subscription ended
type closedMsg struct{}

type teaModel struct {
	app     *app
	events  <-chan board.Event
	frame   *board.Frame
	display board.DisplayState
	width   int
}

func waitForEvent(events <-chan board.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m teaModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.app.poller.Refresh()
		case "l":
			m.display = togglePin(m.display)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		m.frame = msg.Frame
		m.display.Tick = msg.Tick
		return m, waitForEvent(m.events)

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m teaModel) View() string {
	var s strings.Builder
	cfg := m.app.cfg

	s.WriteString(titleStyle.Render(boardTitle(cfg.Destination.Code, m.display, m.frame, cfg.Destination.Location())))
	s.WriteString("\n\n")

	pages := board.Pages(m.frame.Rows, cfg.Display.RowsPerPage)
	left := renderTable(m.display, pages[0])
	right := renderTable(m.display, pages[1])
	if m.width > 0 && lipgloss.Width(left)+lipgloss.Width(right)+2 > m.width {
		s.WriteString(left)
		s.WriteString("\n")
		s.WriteString(right)
	} else {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	}
	s.WriteString("\n")

	if m.frame.Err != "" {
		s.WriteString(errStyle.Render("Last error: " + m.frame.Err))
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("q quit • r refresh • l pin locale"))
	return s.String()
}

// runTea runs the bubbletea board until the user quits or ctx is cancelled.
func (a *app) runTea(ctx context.Context) error {
	events, unsubscribe := a.board.Subscribe(16)
	defer unsubscribe()

	m := teaModel{
		app:     a,
		events:  events,
		frame:   a.board.Frame(),
		display: board.DisplayState{Tick: a.board.Tick()},
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
