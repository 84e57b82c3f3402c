package arrivals

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// NotAvailable is the sentinel for a scheduled arrival that could not be derived.
	NotAvailable = "N/A"

	// clockLayout is the board's 24-hour HH:MM format.
	clockLayout = "15:04"

	// referenceOffset is the UTC+9 convention applied to filed departure times.
	referenceOffset = 9 * time.Hour

	// rolloverHour is the hour-of-day at which the UTC+9 reference crosses
	// the destination's midnight.
	rolloverHour = 15

	minutesPerDay = 24 * 60
)

var (
	// ErrInvalidDepartureTime is returned when deptime is not a valid HHMM clock.
	ErrInvalidDepartureTime = errors.New("invalid departure time")

	// ErrInvalidEnrouteTime is returned when enroute_time has no usable digits.
	ErrInvalidEnrouteTime = errors.New("invalid enroute time")

	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// ScheduledArrival derives the static ETA from a filed departure time and
// enroute duration, both four-digit HHMM strings.
//
// The departure clock is read as UTC, shifted into the UTC+9 reference and
// advanced by the enroute duration. The result is always a valid HH:MM
// string, or NotAvailable together with a non-nil error.
func ScheduledArrival(deptime, enroute string) (string, error) {
	formatted := substring(deptime, 0, 2) + ":" + substring(deptime, 2, 4)
	if !clockPattern.MatchString(formatted) {
		return NotAvailable, fmt.Errorf("%w: %q", ErrInvalidDepartureTime, formatted)
	}

	depHour, _ := strconv.Atoi(formatted[0:2])
	depMinute, _ := strconv.Atoi(formatted[3:5])

	enrouteHour, okHour := leadingInt(substring(enroute, 0, 2))
	enrouteMinute, okMinute := leadingInt(substring(enroute, 2, 4))
	if !okHour || !okMinute {
		return NotAvailable, fmt.Errorf("%w: %q", ErrInvalidEnrouteTime, enroute)
	}

	departure := time.Date(1970, time.January, 1, depHour, depMinute, 0, 0, time.UTC)
	arrival := departure.
		Add(referenceOffset).
		Add(time.Duration(enrouteHour*60+enrouteMinute) * time.Minute)

	// Day-boundary normalization, applied after the enroute duration is added.
	if arrival.Hour() >= rolloverHour {
		arrival = arrival.AddDate(0, 0, 1).Add(-24 * time.Hour)
	}

	return arrival.Format(clockLayout), nil
}

// FormatClock renders t as a zero-padded HH:MM string in t's location.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// MinuteOfDay parses an HH:MM string into minutes since midnight.
// Returns false for sentinels and malformed values.
func MinuteOfDay(hhmm string) (int, bool) {
	m := clockPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, true
}

// substring returns s[start:end] clamped to the length of s.
func substring(s string, start, end int) string {
	if start > len(s) {
		start = len(s)
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// leadingInt parses an optionally signed run of leading digits, ignoring
// leading whitespace and anything after the digits ("07z" -> 7).
// Returns false when there are no digits at all.
func leadingInt(s string) (int, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	sign := 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	return sign * n, true
}
