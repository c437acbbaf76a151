// Package model contains domain records passed between layers.
package model

import (
	"fmt"
	"time"
)

// EventType tags a supply-chain checkpoint. The set is open; these are the
// conventional stages issued by the reference supply chain.
const (
	EventFactoryProduction  = "Factory Production"
	EventQualityCheck       = "Quality Check"
	EventWarehouseReceipt   = "Warehouse Receipt"
	EventRetailDistribution = "Retail Distribution"
	EventConsumerScan       = "Consumer Scan"
)

// Checkpoint is one recorded supply-chain event for a tracked unit.
// Coordinates are WGS84 decimal degrees; (0,0) means the scanner did not
// report a location.
type Checkpoint struct {
	UnitID    string    `json:"unit_id"`
	Location  string    `json:"location"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackedUnit is the static identity of one physical item, created at
// issuance and immutable afterwards. Checkpoints accumulate separately.
type TrackedUnit struct {
	UniqueID     string    `json:"unique_id"`
	BatchID      string    `json:"batch_id"`
	DrugName     string    `json:"drug_name"`
	GenericName  string    `json:"generic_name"`
	Manufacturer string    `json:"manufacturer"`
	LicenseNo    string    `json:"license_no"`
	MRP          float64   `json:"mrp"`
	MfgDate      time.Time `json:"mfg_date"`
	ExpDate      time.Time `json:"exp_date"`
	IssuedAt     time.Time `json:"issued_at"`
}

// AttemptType classifies a failed verification attempt.
type AttemptType string

const (
	// AttemptInvalidID marks a scan of an identifier with no issued unit.
	AttemptInvalidID AttemptType = "INVALID_ID"
	// AttemptAnomalyDetected marks a unit flagged by the scoring pipeline.
	AttemptAnomalyDetected AttemptType = "ANOMALY_DETECTED"
	// AttemptSuspiciousFrequency marks a unit flagged by the scan-rate guard.
	AttemptSuspiciousFrequency AttemptType = "SUSPICIOUS_FREQUENCY"
)

// FailedAttempt is an append-only record of a verification that did not
// resolve to an authentic, safe unit. Batch-health scoring reads these back.
type FailedAttempt struct {
	ScannedID   string      `json:"scanned_id"`
	AttemptType AttemptType `json:"attempt_type"`
	Reason      string      `json:"reason"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ScanEvent is the ingestion payload flowing through the queue. ScanID is the
// client-supplied idempotency key.
type ScanEvent struct {
	ScanID    string    `json:"scan_id"`
	UnitID    string    `json:"unit_id"`
	Location  string    `json:"location"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// IdempotencyKey returns the client-supplied scan id, or a deterministic
// substitute so content-identical retries still deduplicate.
func (e ScanEvent) IdempotencyKey() string {
	if e.ScanID != "" {
		return e.ScanID
	}
	return fmt.Sprintf("%s_%s_%d", e.UnitID, e.EventType, e.Timestamp.UnixNano())
}

// Checkpoint converts the scan event into its persisted form.
func (e ScanEvent) Checkpoint() Checkpoint {
	return Checkpoint{
		UnitID:    e.UnitID,
		Location:  e.Location,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
		EventType: e.EventType,
		Timestamp: e.Timestamp,
	}
}
