package main

import (
	"context"
	"fmt"
	"io"

	"github.com/unklstewy/arrivals-board/internal/board"
)

// printOnce runs one poll cycle and writes the board to w.
func (a *app) printOnce(ctx context.Context, w io.Writer) error {
	a.poller.RefreshDirectory(ctx)
	if err := a.poller.Poll(ctx); err != nil {
		return err
	}
	return a.writeBoard(w, a.board.Frame())
}

func (a *app) writeBoard(w io.Writer, f *board.Frame) error {
	display := board.DisplayState{Pinned: true, PinnedLocale: a.locale}

	title := boardTitle(a.cfg.Destination.Code, display, f, a.cfg.Destination.Location())
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}

	pages := board.Pages(f.Rows, a.cfg.Display.RowsPerPage)
	if len(pages[0]) == 0 {
		_, err := fmt.Fprintln(w, helpStyle.Render("No inbound flights"))
		return err
	}
	for _, page := range pages {
		if len(page) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, renderTable(display, page)); err != nil {
			return err
		}
	}
	return nil
}
