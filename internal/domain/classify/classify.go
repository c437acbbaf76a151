// Package classify turns a feature vector into a counterfeit-probability
// estimate, a risk tier, and human-readable reasons.
package classify

import (
	"fmt"

	"meditrace/internal/domain/features"
	"meditrace/internal/domain/model"
)

// Verdict is the classifier output.
type Verdict struct {
	// Probability is the counterfeit-probability estimate in [0,1].
	Probability float64
	// Tier buckets the probability.
	Tier model.Tier
	// Reasons are templated explanations for the score, reproducible from
	// the feature vector alone.
	Reasons []string
}

// Classifier estimates counterfeit risk from a feature vector.
// Implementations must be deterministic and total over [0,1]^10 inputs.
type Classifier interface {
	Classify(v features.Vector) Verdict
	Name() string
}

// Tier boundaries on the probability estimate.
const (
	tierReviewMin      = 0.50
	tierSuspiciousMin  = 0.75
	tierCounterfeitMin = 0.85
)

// TierFor buckets a probability into its risk tier.
func TierFor(probability float64) model.Tier {
	switch {
	case probability >= tierCounterfeitMin:
		return model.TierCounterfeit
	case probability >= tierSuspiciousMin:
		return model.TierSuspicious
	case probability >= tierReviewMin:
		return model.TierReview
	default:
		return model.TierAuthentic
	}
}

// New returns the classifier for a configured strategy name. Unrecognized
// strategies fall back to the deterministic rule-based implementation so a
// bad deployment config degrades rather than fails.
func New(strategy string) Classifier {
	switch strategy {
	case "rules", "":
		return NewRules()
	default:
		return NewRules()
	}
}

// Rules is the deterministic weighted-rule classifier. Feature risks are
// blended by fixed weights reflecting how strongly each signal predicts
// counterfeiting; the weighted mean is the probability estimate.
type Rules struct {
	weights map[string]float64
	total   float64
}

// NewRules builds the rule classifier with its standard weights.
func NewRules() *Rules {
	weights := map[string]float64{
		"scan_frequency_score":       0.75,
		"unique_locations_ratio":     0.75,
		"supply_chain_completeness":  1.0,
		"license_validity_score":     2.0,
		"price_deviation_score":      1.0,
		"temporal_consistency_score": 1.0,
		"geofence_compliance_score":  0.75,
		"speed_anomaly_severity":     2.5,
		"batch_health_score":         1.0,
		"business_hours_score":       0.5,
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return &Rules{weights: weights, total: total}
}

// Name identifies the strategy.
func (r *Rules) Name() string { return "rules" }

// Classify blends per-feature risk into the probability estimate. Because
// every weight is positive and each risk is monotone in its feature, raising
// any single risk signal never lowers the probability.
func (r *Rules) Classify(v features.Vector) Verdict {
	weighted := 0.0
	for _, f := range v.Features() {
		weighted += r.weights[f.Name] * clamp01(f.Risk())
	}
	probability := weighted / r.total

	return Verdict{
		Probability: probability,
		Tier:        TierFor(probability),
		Reasons:     explain(v),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// explain maps feature thresholds onto templated reasons.
func explain(v features.Vector) []string {
	var reasons []string
	if v.SpeedAnomaly >= 1.0 {
		reasons = append(reasons, "physically impossible travel speed between checkpoints; identifier may be cloned")
	} else if v.SpeedAnomaly >= 0.6 {
		reasons = append(reasons, "travel speed between checkpoints exceeds plausible ground transport")
	}
	if v.LicenseValidity < 1.0 {
		reasons = append(reasons, "manufacturer license number is missing or malformed")
	}
	if v.PriceDeviation <= 0.3 {
		reasons = append(reasons, "declared MRP deviates sharply from the market reference price")
	}
	if v.Completeness < 0.5 {
		reasons = append(reasons, "expected supply-chain stages are missing from the checkpoint history")
	}
	if v.ScanFrequency <= 0.3 {
		reasons = append(reasons, "identifier is being scanned far more often than goods move")
	}
	if v.TemporalConsistency <= 0.5 {
		reasons = append(reasons, "transit times are inconsistent with expected route durations")
	}
	if v.GeofenceCompliance < 0.5 {
		reasons = append(reasons, "checkpoints fall outside the manufacturer's operational regions")
	}
	if v.BatchHealth < 0.7 {
		reasons = append(reasons, fmt.Sprintf("sibling units in the batch have prior failed verifications (batch health %.2f)", v.BatchHealth))
	}
	if v.BusinessHours < 0.5 {
		reasons = append(reasons, "scans occur predominantly outside business hours")
	}
	return reasons
}
