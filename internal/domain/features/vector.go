// Package features turns a tracked unit and its checkpoint history into the
// ten-element behavioral feature vector consumed by the risk classifier.
package features

// Polarity says which direction of a feature value indicates trouble.
type Polarity int

const (
	// GoodHigh means higher values look more authentic.
	GoodHigh Polarity = iota
	// BadHigh means higher values look more anomalous.
	BadHigh
)

// Vector is the fixed-shape feature record. Every field lies in [0,1].
// All fields are GoodHigh except SpeedAnomaly.
type Vector struct {
	ScanFrequency       float64 `json:"scan_frequency_score"`
	UniqueLocations     float64 `json:"unique_locations_ratio"`
	Completeness        float64 `json:"supply_chain_completeness"`
	LicenseValidity     float64 `json:"license_validity_score"`
	PriceDeviation      float64 `json:"price_deviation_score"`
	TemporalConsistency float64 `json:"temporal_consistency_score"`
	GeofenceCompliance  float64 `json:"geofence_compliance_score"`
	SpeedAnomaly        float64 `json:"speed_anomaly_severity"`
	BatchHealth         float64 `json:"batch_health_score"`
	BusinessHours       float64 `json:"business_hours_score"`
}

// Feature is one named element of the vector with its polarity tag.
type Feature struct {
	Name     string
	Value    float64
	Polarity Polarity
}

// Features returns the vector elements in their stable canonical order.
func (v Vector) Features() []Feature {
	return []Feature{
		{Name: "scan_frequency_score", Value: v.ScanFrequency, Polarity: GoodHigh},
		{Name: "unique_locations_ratio", Value: v.UniqueLocations, Polarity: GoodHigh},
		{Name: "supply_chain_completeness", Value: v.Completeness, Polarity: GoodHigh},
		{Name: "license_validity_score", Value: v.LicenseValidity, Polarity: GoodHigh},
		{Name: "price_deviation_score", Value: v.PriceDeviation, Polarity: GoodHigh},
		{Name: "temporal_consistency_score", Value: v.TemporalConsistency, Polarity: GoodHigh},
		{Name: "geofence_compliance_score", Value: v.GeofenceCompliance, Polarity: GoodHigh},
		{Name: "speed_anomaly_severity", Value: v.SpeedAnomaly, Polarity: BadHigh},
		{Name: "batch_health_score", Value: v.BatchHealth, Polarity: GoodHigh},
		{Name: "business_hours_score", Value: v.BusinessHours, Polarity: GoodHigh},
	}
}

// Risk maps one feature onto [0,1] where higher always means more
// suspicious, folding the polarity away.
func (f Feature) Risk() float64 {
	if f.Polarity == BadHigh {
		return f.Value
	}
	return 1 - f.Value
}
