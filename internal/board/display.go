package board

import (
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
)

var (
	headersKorean  = [5]string{"도착시간", "편명", "출발지", "변경시간", "현황"}
	headersEnglish = [5]string{"TIME", "FLT NO", "FROM", "NEW", "STATUS"}
)

// DisplayState is the renderer-owned view state. The locale alternates on
// every display tick unless pinned.
type DisplayState struct {
	Tick uint64

	// Pinned freezes the locale at PinnedLocale
	Pinned       bool
	PinnedLocale arrivals.Locale
}

// Locale returns the language for the current tick.
func (d DisplayState) Locale() arrivals.Locale {
	if d.Pinned {
		return d.PinnedLocale
	}
	if d.Tick%2 == 0 {
		return arrivals.LocaleKorean
	}
	return arrivals.LocaleEnglish
}

// Headers returns the five column headers.
func (d DisplayState) Headers() [5]string {
	if d.Locale() == arrivals.LocaleEnglish {
		return headersEnglish
	}
	return headersKorean
}

// DepartureName returns the departure airport name in the current locale.
func (d DisplayState) DepartureName(row arrivals.Row) string {
	if d.Locale() == arrivals.LocaleEnglish {
		return row.Departure.International
	}
	return row.Departure.Local
}

// StatusText returns the status label in the current locale.
func (d DisplayState) StatusText(row arrivals.Row) string {
	return row.Status.Label(d.Locale())
}

// Cells returns the five display cells of row in header order.
func (d DisplayState) Cells(row arrivals.Row) [5]string {
	return [5]string{
		row.ScheduledArrival,
		row.FlightNumber,
		d.DepartureName(row),
		row.RemainingEstimate,
		d.StatusText(row),
	}
}

// Pages splits rows into the left and right boards of perPage rows each.
// Rows beyond the second board are not shown.
func Pages(rows []arrivals.Row, perPage int) [2][]arrivals.Row {
	var pages [2][]arrivals.Row
	if perPage <= 0 {
		return pages
	}
	for i := range pages {
		start := i * perPage
		if start >= len(rows) {
			break
		}
		end := min(start+perPage, len(rows))
		pages[i] = rows[start:end]
	}
	return pages
}
