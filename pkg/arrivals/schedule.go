package arrivals

import (
	"cmp"
	"slices"
	"time"
)

// EffectiveTime is the time a row is ordered by: the live estimate when
// present, otherwise the scheduled arrival.
func EffectiveTime(row Row) string {
	if row.RemainingEstimate != "" {
		return row.RemainingEstimate
	}
	return row.ScheduledArrival
}

// sortKey returns the wraparound-adjusted minute for a row.
// Times earlier than now's minute-of-day belong to the next day.
func sortKey(row Row, nowMinute int) (int, bool) {
	minute, ok := MinuteOfDay(EffectiveTime(row))
	if !ok {
		return 0, false
	}
	if minute < nowMinute {
		minute += minutesPerDay
	}
	return minute, true
}

// Sort orders rows soonest-from-now, crossing midnight correctly.
// Rows without a usable time go last; ties are broken by flight number.
func Sort(rows []Row, now time.Time) {
	nowMinute := now.Hour()*60 + now.Minute()

	slices.SortStableFunc(rows, func(a, b Row) int {
		ka, okA := sortKey(a, nowMinute)
		kb, okB := sortKey(b, nowMinute)
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case okA && okB && ka != kb:
			return cmp.Compare(ka, kb)
		}
		return cmp.Compare(a.FlightNumber, b.FlightNumber)
	})
}
