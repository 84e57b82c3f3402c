package arrivals

import (
	"fmt"

	"github.com/unklstewy/arrivals-board/pkg/config"
)

// Policy pairs a remaining-time estimator with a classifier.
// The two named presets keep their own thresholds and are never blended.
type Policy struct {
	Name       string
	Estimator  RemainingEstimator
	Classifier Classifier
}

const (
	// PolicyGroundspeed uses the groundspeed-ratio estimator and reports
	// LANDED for aircraft still rolling on the field.
	PolicyGroundspeed = "groundspeed"

	// PolicyDescent uses the altitude-banded estimator and only reports
	// ARRIVED on the field.
	PolicyDescent = "descent"
)

// NewPolicy builds the named preset from configuration.
func NewPolicy(cfg config.PolicyConfig) (Policy, error) {
	thresholds := Thresholds{
		ProximityNM:      cfg.ProximityNM,
		GroundAltitudeFt: cfg.GroundAltitudeFt,
		DelayMinutes:     cfg.DelayThresholdMinutes,
	}

	switch cfg.Name {
	case PolicyGroundspeed:
		return Policy{
			Name:       PolicyGroundspeed,
			Estimator:  GroundspeedRatio{MinGroundspeedKts: cfg.MinGroundspeedKts},
			Classifier: RolloutClassifier{Thresholds: thresholds},
		}, nil

	case PolicyDescent:
		bands := make([]SpeedBand, 0, len(cfg.SpeedBands))
		for _, b := range cfg.SpeedBands {
			bands = append(bands, SpeedBand{CeilingFt: b.CeilingFt, SpeedKts: b.SpeedKts})
		}
		return Policy{
			Name: PolicyDescent,
			Estimator: AltitudeBanded{
				MaxDistanceNM:   cfg.MaxDistanceNM,
				LandingRadiusNM: cfg.ProximityNM,
				TaxiSpeedKts:    cfg.StopSpeedKts,
				Bands:           bands,
			},
			Classifier: StopClassifier{Thresholds: thresholds, StopSpeedKts: cfg.StopSpeedKts},
		}, nil

	default:
		return Policy{}, fmt.Errorf("unknown policy %q", cfg.Name)
	}
}
