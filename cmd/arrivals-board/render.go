package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rivo/tview"

	"github.com/unklstewy/arrivals-board/internal/board"
	"github.com/unklstewy/arrivals-board/internal/logging"
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	delayedStyle = cellStyle.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// statusColumn is the index of the status cell in a board row
const statusColumn = 4

// renderTable draws one board page with lipgloss.
func renderTable(display board.DisplayState, rows []arrivals.Row) string {
	headers := display.Headers()

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers[:]...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusColumn && row >= 0 && row < len(rows) && rows[row].Status == arrivals.StatusDelayed {
				return delayedStyle
			}
			return cellStyle
		})

	for _, row := range rows {
		cells := display.Cells(row)
		t.Row(cells[:]...)
	}
	return t.String()
}

// boardTitle is the line above the boards.
func boardTitle(destination string, display board.DisplayState, f *board.Frame, loc *time.Location) string {
	label := "ARRIVALS"
	if display.Locale() == arrivals.LocaleKorean {
		label = "도착"
	}
	title := fmt.Sprintf("%s %s", destination, label)
	if !f.UpdatedAt.IsZero() {
		title += "  " + f.UpdatedAt.In(loc).Format("15:04:05")
	}
	return title
}

// togglePin freezes the locale currently shown, or releases a pinned one.
func togglePin(d board.DisplayState) board.DisplayState {
	if d.Pinned {
		d.Pinned = false
		return d
	}
	d.PinnedLocale = d.Locale()
	d.Pinned = true
	return d
}

// levelColor maps a log level to a tview color name.
func levelColor(lvl slog.Level) string {
	switch {
	case lvl >= slog.LevelError:
		return "red"
	case lvl >= slog.LevelWarn:
		return "yellow"
	case lvl >= slog.LevelInfo:
		return "white"
	default:
		return "gray"
	}
}

// formatLogEntry renders one log line with tview color tags.
func formatLogEntry(e logging.Entry) string {
	return fmt.Sprintf("[gray]%s[-] [%s]%-5s[-] %s",
		e.Time.Format("15:04:05"), levelColor(e.Level), e.Level.String(), tview.Escape(e.Message))
}

