package board

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/unklstewy/arrivals-board/pkg/arrivals"
)

const (
	// stabilizerSize bounds per-flight memory
	stabilizerSize = 512

	// stabilizerTTL forgets flights that have left the board
	stabilizerTTL = 30 * time.Minute
)

type flightStatus struct {
	shown     arrivals.Status
	candidate arrivals.Status
	count     int
}

// Stabilizer applies hysteresis to displayed statuses: a flight's shown
// status only changes after the same new classification has been seen
// for Cycles consecutive polls. A flight seen for the first time shows
// its raw status immediately.
type Stabilizer struct {
	cycles int
	seen   *expirable.LRU[string, flightStatus]
}

// NewStabilizer returns nil when cycles is 0; a nil Stabilizer passes rows through.
func NewStabilizer(cycles int) *Stabilizer {
	if cycles <= 0 {
		return nil
	}
	return &Stabilizer{
		cycles: cycles,
		seen:   expirable.NewLRU[string, flightStatus](stabilizerSize, nil, stabilizerTTL),
	}
}

// Apply returns a copy of rows with stabilized statuses.
func (s *Stabilizer) Apply(rows []arrivals.Row) []arrivals.Row {
	if s == nil {
		return rows
	}
	out := make([]arrivals.Row, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Status = s.observe(out[i].FlightNumber, out[i].Status)
	}
	return out
}

func (s *Stabilizer) observe(flight string, raw arrivals.Status) arrivals.Status {
	st, ok := s.seen.Get(flight)
	switch {
	case !ok:
		st = flightStatus{shown: raw}
	case raw == st.shown:
		st.count = 0
	case raw == st.candidate && st.count > 0:
		st.count++
	default:
		st.candidate = raw
		st.count = 1
	}
	if st.count >= s.cycles {
		st = flightStatus{shown: raw}
	}
	s.seen.Add(flight, st)
	return st.shown
}
