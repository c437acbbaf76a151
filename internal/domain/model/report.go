package model

import "time"

// Severity grades a detected anomaly.
type Severity string

const (
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AnomalyType identifies the kind of transition anomaly.
type AnomalyType string

const (
	// AnomalyCloningSuspected flags a physically impossible travel speed,
	// the signature of one identifier cloned onto multiple items.
	AnomalyCloningSuspected AnomalyType = "CLONING_SUSPECTED"
	// AnomalyUnusualSpeed flags fast-but-feasible transport, e.g. an
	// undocumented air-freight leg.
	AnomalyUnusualSpeed AnomalyType = "UNUSUAL_SPEED"
)

// TransitionAnomaly describes one suspicious adjacent-checkpoint transition.
type TransitionAnomaly struct {
	Type           AnomalyType `json:"type"`
	Severity       Severity    `json:"severity"`
	FromLocation   string      `json:"from_location"`
	ToLocation     string      `json:"to_location"`
	DistanceKm     float64     `json:"distance_km"`
	ElapsedHours   float64     `json:"elapsed_hours"`
	SpeedKmh       float64     `json:"speed_kmh"`
	MaxAllowedKmh  float64     `json:"max_allowed_kmh"`
	Recommendation string      `json:"recommendation"`
}

// FrequencyAlert reports an excessive scan rate for one unit identifier.
type FrequencyAlert struct {
	Alert          string        `json:"alert"`
	Severity       Severity      `json:"severity"`
	ScanCount      int           `json:"scan_count"`
	Window         time.Duration `json:"-"`
	WindowHours    float64       `json:"window_hours"`
	Recommendation string        `json:"recommendation"`
}

// Tier is one of four ordered risk buckets derived from the counterfeit
// probability estimate.
type Tier string

const (
	TierAuthentic   Tier = "AUTHENTIC"
	TierReview      Tier = "REVIEW"
	TierSuspicious  Tier = "SUSPICIOUS"
	TierCounterfeit Tier = "COUNTERFEIT"
)

// OverallStatus is the aggregate safety determination for a unit.
type OverallStatus string

const (
	StatusSafe       OverallStatus = "SAFE"
	StatusSuspicious OverallStatus = "SUSPICIOUS"
)

// SafetyReport aggregates every sub-check for one verification request.
type SafetyReport struct {
	UnitID           string              `json:"unit_id"`
	AnalyzedAt       time.Time           `json:"analyzed_at"`
	TotalCheckpoints int                 `json:"total_checkpoints"`
	CloningAlerts    []TransitionAnomaly `json:"cloning_alerts"`
	FrequencyAlert   *FrequencyAlert     `json:"frequency_alert,omitempty"`
	RiskTier         Tier                `json:"risk_tier"`
	RiskProbability  float64             `json:"risk_probability"`
	Reasons          []string            `json:"reasons,omitempty"`
	OverallStatus    OverallStatus       `json:"overall_status"`
}
