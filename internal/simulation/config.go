package simulation

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Workers  int           // Number of concurrent submitters
	Timeout  time.Duration // HTTP request timeout
	Settle   time.Duration // Wait between submission and verification
	LogFile  string        // Log file for simulation output
	Verbose  bool          // Enable verbose logging
	Scenario string        // Run a single named scenario, empty for all
}

// batchRequest mirrors the POST /api/v1/batches schema.
type batchRequest struct {
	DrugName     string  `json:"drug_name"`
	GenericName  string  `json:"generic_name"`
	Manufacturer string  `json:"manufacturer"`
	LicenseNo    string  `json:"license_no"`
	MRP          float64 `json:"mrp"`
	Quantity     int     `json:"quantity"`
	Location     string  `json:"location,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
}

// batchResult mirrors the issuance response.
type batchResult struct {
	BatchID string   `json:"batch_id"`
	UnitIDs []string `json:"unit_ids"`
}

// scanRequest mirrors the POST /api/v1/checkpoints schema.
type scanRequest struct {
	ScanID    string  `json:"scan_id"`
	UnitID    string  `json:"unit_id"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	EventType string  `json:"event_type"`
	TS        string  `json:"ts"`
}

// safetyReport is the subset of the verification response the simulator
// checks.
type safetyReport struct {
	UnitID          string  `json:"unit_id"`
	RiskTier        string  `json:"risk_tier"`
	RiskProbability float64 `json:"risk_probability"`
	OverallStatus   string  `json:"overall_status"`
}

// ackResponse mirrors the scan ingestion acknowledgement.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds simulation statistics.
type Stats struct {
	ScenariosRun    int
	ScenariosPassed int
	ScenariosFailed int
	ScansSubmitted  int
	ScansDuplicate  int
	ScansFailed     int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
