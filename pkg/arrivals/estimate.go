package arrivals

import (
	"time"
)

// Telemetry is the live state of one inbound aircraft relative to the destination.
type Telemetry struct {
	// DistanceNM is the great-circle distance to the destination
	DistanceNM float64

	// AltitudeFt is the reported altitude in feet
	AltitudeFt float64

	// GroundspeedKts is the reported groundspeed in knots
	GroundspeedKts float64
}

// RemainingEstimator derives the live "time remaining" ETA.
//
// Implementations return an HH:MM wall-clock time in now's location, or the
// empty string when no estimate is meaningful yet.
type RemainingEstimator interface {
	Estimate(tel Telemetry, now time.Time) string
}

// GroundspeedRatio estimates arrival as distance / groundspeed.
type GroundspeedRatio struct {
	// MinGroundspeedKts suppresses estimates for slow or stationary aircraft
	MinGroundspeedKts float64
}

// Estimate implements RemainingEstimator.
func (g GroundspeedRatio) Estimate(tel Telemetry, now time.Time) string {
	if tel.GroundspeedKts < g.MinGroundspeedKts || tel.GroundspeedKts <= 0 {
		return ""
	}
	return projectArrival(now, tel.DistanceNM, tel.GroundspeedKts)
}

// SpeedBand assigns an assumed groundspeed to an altitude range.
type SpeedBand struct {
	// CeilingFt is the exclusive upper altitude of the band (0 = unbounded)
	CeilingFt float64

	// SpeedKts is the assumed groundspeed within the band
	SpeedKts float64
}

// AltitudeBanded estimates arrival from an assumed speed chosen by altitude,
// reflecting slower descent and approach profiles closer to the ground.
type AltitudeBanded struct {
	// MaxDistanceNM is the range beyond which no estimate is produced
	MaxDistanceNM float64

	// LandingRadiusNM and TaxiSpeedKts define "landed and taxiing":
	// inside the radius and slower than taxi speed, the estimate is suppressed
	LandingRadiusNM float64
	TaxiSpeedKts    float64

	// Bands are checked in order; the first band whose ceiling exceeds the
	// altitude (or whose ceiling is 0) wins
	Bands []SpeedBand
}

// Estimate implements RemainingEstimator.
func (a AltitudeBanded) Estimate(tel Telemetry, now time.Time) string {
	if tel.DistanceNM > a.MaxDistanceNM {
		return ""
	}
	if tel.DistanceNM < a.LandingRadiusNM && tel.GroundspeedKts < a.TaxiSpeedKts {
		return ""
	}

	speed := a.speedFor(tel.AltitudeFt)
	if speed <= 0 {
		return ""
	}
	return projectArrival(now, tel.DistanceNM, speed)
}

func (a AltitudeBanded) speedFor(altitudeFt float64) float64 {
	for _, band := range a.Bands {
		if band.CeilingFt <= 0 || altitudeFt < band.CeilingFt {
			return band.SpeedKts
		}
	}
	return 0
}

// projectArrival adds distance/speed hours to now. speed must be positive.
func projectArrival(now time.Time, distanceNM, speedKts float64) string {
	hours := distanceNM / speedKts
	return FormatClock(now.Add(time.Duration(hours * float64(time.Hour))))
}
