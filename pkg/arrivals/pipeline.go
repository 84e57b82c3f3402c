// Package arrivals turns live pilot telemetry and filed flight plans into
// the sorted, classified rows of an arrivals board.
//
// Everything in this package is recomputed from scratch each poll cycle;
// nothing carries over between calls.
package arrivals

import (
	"log/slog"
	"time"

	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/coordinates"
	"github.com/unklstewy/arrivals-board/pkg/vatsim"
)

// Row is one line of the arrivals board.
type Row struct {
	FlightNumber      string         `json:"flight_number"`
	DepartureCode     string         `json:"departure_code"`
	Departure         airports.Names `json:"departure"`
	ScheduledArrival  string         `json:"scheduled_arrival"`
	RemainingEstimate string         `json:"remaining_estimate"`
	Status            Status         `json:"status"`
	DistanceNM        float64        `json:"distance_nm"`
	BearingDeg        float64        `json:"bearing_deg"`
	AltitudeFt        float64        `json:"altitude_ft"`
	GroundspeedKts    float64        `json:"groundspeed_kts"`
}

// Pipeline computes board rows for one destination airport.
type Pipeline struct {
	// Destination is the ICAO code flights must be filed to
	Destination string

	// Location is the destination's position
	Location coordinates.Geographic

	// TimeZone is the board's local clock; nil means UTC
	TimeZone *time.Location

	// Policy selects the estimator and classifier
	Policy Policy

	Logger *slog.Logger
}

// Build filters pilots to the destination, derives every row and sorts them.
// All rows are computed against the same now and the same directory.
func (p *Pipeline) Build(pilots []vatsim.Pilot, dir *airports.Directory, now time.Time) []Row {
	if p.TimeZone != nil {
		now = now.In(p.TimeZone)
	}

	inbound := vatsim.ArrivalsFor(pilots, p.Destination)
	rows := make([]Row, 0, len(inbound))
	for _, pilot := range inbound {
		rows = append(rows, p.row(pilot, dir, now))
	}

	Sort(rows, now)
	return rows
}

func (p *Pipeline) row(pilot vatsim.Pilot, dir *airports.Directory, now time.Time) Row {
	fp := pilot.FlightPlan

	scheduled, err := ScheduledArrival(fp.DepartureTime, fp.EnrouteTime)
	if err != nil {
		p.logger().Warn("scheduled arrival unavailable",
			slog.String("callsign", pilot.Callsign),
			slog.String("deptime", fp.DepartureTime),
			slog.String("enroute_time", fp.EnrouteTime),
			slog.Any("err", err))
	}

	pos := coordinates.Geographic{
		Latitude:  pilot.Latitude,
		Longitude: pilot.Longitude,
		Altitude:  pilot.Altitude,
	}
	tel := Telemetry{
		DistanceNM:     coordinates.DistanceNauticalMiles(p.Location, pos),
		AltitudeFt:     pilot.Altitude,
		GroundspeedKts: pilot.Groundspeed,
	}

	remaining := p.Policy.Estimator.Estimate(tel, now)

	return Row{
		FlightNumber:      pilot.Callsign,
		DepartureCode:     fp.Departure,
		Departure:         dir.Lookup(fp.Departure),
		ScheduledArrival:  scheduled,
		RemainingEstimate: remaining,
		Status:            p.Policy.Classifier.Classify(tel, scheduled, remaining),
		DistanceNM:        tel.DistanceNM,
		BearingDeg:        coordinates.Bearing(p.Location, pos),
		AltitudeFt:        tel.AltitudeFt,
		GroundspeedKts:    tel.GroundspeedKts,
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
