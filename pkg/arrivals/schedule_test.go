package arrivals

import (
	"testing"
	"time"
)

func flights(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.FlightNumber
	}
	return out
}

func assertOrder(t *testing.T, rows []Row, want ...string) {
	t.Helper()
	got := flights(rows)
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestEffectiveTime(t *testing.T) {
	if got := EffectiveTime(Row{ScheduledArrival: "10:00", RemainingEstimate: "10:20"}); got != "10:20" {
		t.Errorf("Expected live estimate, got %s", got)
	}
	if got := EffectiveTime(Row{ScheduledArrival: "10:00"}); got != "10:00" {
		t.Errorf("Expected scheduled time, got %s", got)
	}
}

func TestSort(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC) }

	t.Run("Soonest first", func(t *testing.T) {
		rows := []Row{
			{FlightNumber: "C", ScheduledArrival: "14:00"},
			{FlightNumber: "A", ScheduledArrival: "11:00"},
			{FlightNumber: "B", ScheduledArrival: "09:00", RemainingEstimate: "12:00"},
		}
		Sort(rows, at(10, 0))
		assertOrder(t, rows, "A", "B", "C")
	})

	t.Run("Wraparound at midnight", func(t *testing.T) {
		rows := []Row{
			{FlightNumber: "PAST", ScheduledArrival: "23:45"},
			{FlightNumber: "EARLY", ScheduledArrival: "00:10"},
			{FlightNumber: "LATE", ScheduledArrival: "23:55"},
		}
		Sort(rows, at(23, 50))
		// 23:55 is later today, 00:10 is tomorrow, 23:45 already passed.
		assertOrder(t, rows, "LATE", "EARLY", "PAST")
	})

	t.Run("Current minute sorts first", func(t *testing.T) {
		rows := []Row{
			{FlightNumber: "NEXT", ScheduledArrival: "10:01"},
			{FlightNumber: "NOW", ScheduledArrival: "10:00"},
		}
		Sort(rows, at(10, 0))
		assertOrder(t, rows, "NOW", "NEXT")
	})

	t.Run("Unavailable last", func(t *testing.T) {
		rows := []Row{
			{FlightNumber: "X", ScheduledArrival: NotAvailable},
			{FlightNumber: "A", ScheduledArrival: "11:00"},
			{FlightNumber: "W", ScheduledArrival: NotAvailable},
			{FlightNumber: "B", ScheduledArrival: "09:00"},
		}
		Sort(rows, at(10, 0))
		assertOrder(t, rows, "A", "B", "W", "X")
	})

	t.Run("Ties by flight number", func(t *testing.T) {
		rows := []Row{
			{FlightNumber: "KAL2", ScheduledArrival: "11:00"},
			{FlightNumber: "AAR9", RemainingEstimate: "11:00", ScheduledArrival: NotAvailable},
			{FlightNumber: "JNA5", ScheduledArrival: "11:00"},
		}
		Sort(rows, at(10, 0))
		assertOrder(t, rows, "AAR9", "JNA5", "KAL2")
	})

	t.Run("Empty", func(t *testing.T) {
		Sort(nil, at(10, 0))
	})
}
