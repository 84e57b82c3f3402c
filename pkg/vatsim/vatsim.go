// Package vatsim reads the public VATSIM network data feed.
//
// The feed is a single JSON document refreshed roughly every 15 seconds
// containing every connected pilot with position, speed and filed flight plan.
package vatsim

import (
	"context"
	"strings"
	"time"
)

// Pilot is one connected aircraft from the feed.
// All position data is in WGS84 coordinate system.
type Pilot struct {
	// CID is the network member id
	CID int `json:"cid"`

	// Callsign is the flight number shown on the board (e.g., "KAL702")
	Callsign string `json:"callsign"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`

	// Altitude in feet above mean sea level
	Altitude float64 `json:"altitude"`

	// Groundspeed in knots
	Groundspeed float64 `json:"groundspeed"`

	// Heading in degrees (0-359)
	Heading float64 `json:"heading"`

	// FlightPlan is nil for pilots that have not filed
	FlightPlan *FlightPlan `json:"flight_plan"`

	// LastUpdated is when the network last saw a position report
	LastUpdated time.Time `json:"last_updated"`
}

// FlightPlan is the filed plan attached to a pilot.
type FlightPlan struct {
	FlightRules string `json:"flight_rules"`
	Aircraft    string `json:"aircraft_short"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	Alternate   string `json:"alternate"`
	CruiseTAS   string `json:"cruise_tas"`
	Altitude    string `json:"altitude"`

	// DepartureTime is the filed HHMM departure clock (e.g., "1030")
	DepartureTime string `json:"deptime"`

	// EnrouteTime is the filed HHMM flight duration (e.g., "0215")
	EnrouteTime string `json:"enroute_time"`

	FuelTime string `json:"fuel_time"`
	Route    string `json:"route"`
}

// DataResponse is the subset of the v3 feed document the board uses.
type DataResponse struct {
	General struct {
		Version          int       `json:"version"`
		UpdateTimestamp  time.Time `json:"update_timestamp"`
		ConnectedClients int       `json:"connected_clients"`
	} `json:"general"`

	Pilots []Pilot `json:"pilots"`
}

// Snapshot is one consistent read of the feed.
type Snapshot struct {
	Pilots []Pilot

	// UpdatedAt is the feed's own update timestamp
	UpdatedAt time.Time

	// FetchedAt is when the snapshot was received
	FetchedAt time.Time
}

// DataSource is the interface that all telemetry providers must implement.
// This abstraction allows replaying recorded feeds in tests and tools.
type DataSource interface {
	// Fetch returns the current feed snapshot.
	Fetch(ctx context.Context) (*Snapshot, error)

	// Close cleanly shuts down the data source connection.
	Close() error
}

// ArrivalsFor returns the pilots with a flight plan filed to code.
func ArrivalsFor(pilots []Pilot, code string) []Pilot {
	var out []Pilot
	for _, p := range pilots {
		if p.FlightPlan == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p.FlightPlan.Arrival), code) {
			out = append(out, p)
		}
	}
	return out
}
