package arrivals

import (
	"fmt"
)

// Status is the board label of an arrival.
type Status int

const (
	StatusNone Status = iota
	StatusArrived
	StatusLanded
	StatusDelayed
)

// Locale selects the language of board text.
type Locale int

const (
	LocaleKorean Locale = iota
	LocaleEnglish
)

// String returns the English status code, empty for StatusNone.
func (s Status) String() string {
	switch s {
	case StatusArrived:
		return "ARRIVED"
	case StatusLanded:
		return "LANDED"
	case StatusDelayed:
		return "DELAYED"
	default:
		return ""
	}
}

// Label returns the status text in the given locale.
func (s Status) Label(loc Locale) string {
	if loc == LocaleEnglish {
		return s.String()
	}
	switch s {
	case StatusArrived:
		return "도착"
	case StatusLanded:
		return "착륙"
	case StatusDelayed:
		return "지연"
	default:
		return ""
	}
}

// MarshalText encodes the status as its English code.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes an English status code.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*s = StatusNone
	case "ARRIVED":
		*s = StatusArrived
	case "LANDED":
		*s = StatusLanded
	case "DELAYED":
		*s = StatusDelayed
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Classifier labels a flight from one cycle's telemetry and the two ETAs.
// Implementations are stateless: the same inputs always give the same status.
type Classifier interface {
	Classify(tel Telemetry, scheduled, remaining string) Status
}

// Thresholds are shared by both classifiers.
type Thresholds struct {
	// ProximityNM is the radius around the destination treated as on the field
	ProximityNM float64

	// GroundAltitudeFt is the altitude below which the aircraft is on the ground
	GroundAltitudeFt float64

	// DelayMinutes is how far the live estimate may trail the schedule
	DelayMinutes int
}

func (t Thresholds) onField(tel Telemetry) bool {
	return tel.DistanceNM < t.ProximityNM && tel.AltitudeFt < t.GroundAltitudeFt
}

// delayed compares both ETAs as same-day minute-of-day values.
func (t Thresholds) delayed(scheduled, remaining string) bool {
	sched, ok := MinuteOfDay(scheduled)
	if !ok {
		return false
	}
	live, ok := MinuteOfDay(remaining)
	if !ok {
		return false
	}
	return live-sched > t.DelayMinutes
}

// RolloutClassifier distinguishes an aircraft still rolling on the runway
// (LANDED) from one that has come to a stop (ARRIVED).
type RolloutClassifier struct {
	Thresholds
}

// Classify implements Classifier.
func (c RolloutClassifier) Classify(tel Telemetry, scheduled, remaining string) Status {
	if c.onField(tel) {
		if tel.GroundspeedKts > 0 {
			return StatusLanded
		}
		return StatusArrived
	}
	if c.delayed(scheduled, remaining) {
		return StatusDelayed
	}
	return StatusNone
}

// StopClassifier has no LANDED state: anything on the field slower than
// StopSpeedKts is ARRIVED.
type StopClassifier struct {
	Thresholds

	StopSpeedKts float64
}

// Classify implements Classifier.
func (c StopClassifier) Classify(tel Telemetry, scheduled, remaining string) Status {
	if c.onField(tel) && tel.GroundspeedKts <= c.StopSpeedKts {
		return StatusArrived
	}
	if c.delayed(scheduled, remaining) {
		return StatusDelayed
	}
	return StatusNone
}
