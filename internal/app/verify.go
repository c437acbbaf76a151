package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"meditrace/internal/adapters/repository"
	"meditrace/internal/domain/classify"
	"meditrace/internal/domain/detect"
	"meditrace/internal/domain/features"
	"meditrace/internal/domain/model"
	"meditrace/internal/domain/series"
	"meditrace/pkg/logger"
	"meditrace/pkg/metrics"
)

// ErrUnknownUnit is returned by Verify when the scanned identifier was never
// issued. Callers should surface a counterfeit determination, not a server
// error.
var ErrUnknownUnit = errors.New("unknown unit id")

// ErrInvalidBatch marks issuance requests that fail validation.
var ErrInvalidBatch = errors.New("invalid batch request")

// BatchRequest describes one production batch to issue.
type BatchRequest struct {
	DrugName     string    `json:"drug_name"`
	GenericName  string    `json:"generic_name"`
	Manufacturer string    `json:"manufacturer"`
	LicenseNo    string    `json:"license_no"`
	MRP          float64   `json:"mrp"`
	MfgDate      time.Time `json:"mfg_date"`
	ExpDate      time.Time `json:"exp_date"`
	Quantity     int       `json:"quantity"`

	// Optional production site. When set, every issued unit gets an
	// initial Factory Production checkpoint here.
	Location  string  `json:"location,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// BatchResult lists the identifiers minted for a batch.
type BatchResult struct {
	BatchID  string    `json:"batch_id"`
	UnitIDs  []string  `json:"unit_ids"`
	IssuedAt time.Time `json:"issued_at"`
}

// VerifyResult bundles the safety report with the intermediate scoring
// artifacts for detail-mode responses.
type VerifyResult struct {
	Unit     model.TrackedUnit  `json:"unit"`
	Report   model.SafetyReport `json:"report"`
	Features features.Vector    `json:"features"`
	Verdict  classify.Verdict   `json:"verdict"`
}

// IssueBatch mints Quantity tracked units under a fresh batch id.
func (s *Service) IssueBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if strings.TrimSpace(req.DrugName) == "" {
		return BatchResult{}, fmt.Errorf("%w: drug name is required", ErrInvalidBatch)
	}
	if req.Quantity <= 0 {
		return BatchResult{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidBatch)
	}
	if req.MRP < 0 {
		return BatchResult{}, fmt.Errorf("%w: mrp must not be negative", ErrInvalidBatch)
	}

	now := s.now().UTC()
	batchID := "BATCH-" + uuid.NewString()
	result := BatchResult{
		BatchID:  batchID,
		UnitIDs:  make([]string, 0, req.Quantity),
		IssuedAt: now,
	}

	for i := 0; i < req.Quantity; i++ {
		unit := model.TrackedUnit{
			UniqueID:     "MED-" + uuid.NewString(),
			BatchID:      batchID,
			DrugName:     req.DrugName,
			GenericName:  req.GenericName,
			Manufacturer: req.Manufacturer,
			LicenseNo:    req.LicenseNo,
			MRP:          req.MRP,
			MfgDate:      req.MfgDate,
			ExpDate:      req.ExpDate,
			IssuedAt:     now,
		}
		if err := s.store.CreateUnit(ctx, unit); err != nil {
			return BatchResult{}, fmt.Errorf("creating unit %d of %d: %w", i+1, req.Quantity, err)
		}
		if req.Location != "" {
			cp := model.Checkpoint{
				UnitID:    unit.UniqueID,
				Location:  req.Location,
				Latitude:  req.Latitude,
				Longitude: req.Longitude,
				EventType: model.EventFactoryProduction,
				Timestamp: now,
			}
			if err := s.store.AppendCheckpoint(ctx, cp); err != nil {
				return BatchResult{}, fmt.Errorf("recording production checkpoint: %w", err)
			}
		}
		metrics.RecordUnitIssued()
		result.UnitIDs = append(result.UnitIDs, unit.UniqueID)
	}

	s.logger.Info(ctx, "batch issued",
		logger.String("batchID", batchID),
		logger.String("drug", req.DrugName),
		logger.Int("quantity", req.Quantity),
	)
	return result, nil
}

// Verify runs the full anomaly-scoring pipeline for one unit id and returns
// the safety report. A never-issued id returns ErrUnknownUnit after recording
// the failed attempt; storage faults return ordinary errors.
func (s *Service) Verify(ctx context.Context, unitID string) (VerifyResult, error) {
	now := s.now().UTC()

	unit, err := s.store.Unit(ctx, unitID)
	if errors.Is(err, repository.ErrNotFound) {
		s.recordFailure(ctx, unitID, model.AttemptInvalidID,
			"scanned identifier was never issued", now)
		metrics.RecordVerification("invalid_id")
		return VerifyResult{}, ErrUnknownUnit
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("loading unit: %w", err)
	}

	cps, err := s.store.Checkpoints(ctx, unitID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("loading checkpoints: %w", err)
	}
	hist := series.New(cps)

	anomalies := detect.Transitions(hist)
	if anomalies == nil {
		anomalies = []model.TransitionAnomaly{}
	}
	for _, a := range anomalies {
		metrics.RecordAnomalyDetected(string(a.Type), string(a.Severity))
	}

	freqAlert, err := s.freqGuard.Check(ctx, unitID, now)
	if err != nil {
		// Degrade to an unchecked frequency rather than failing the scan.
		s.logger.Warn(ctx, "frequency guard unavailable",
			logger.String("unitID", unitID), logger.Error(err))
		freqAlert = nil
	}

	vector := s.extractor.Extract(unit, hist, s.batchStats(ctx, unit.BatchID))

	classifyStart := time.Now()
	verdict := s.classifier.Classify(vector)
	metrics.RecordClassifierLatency(float64(time.Since(classifyStart).Milliseconds()))

	report := model.SafetyReport{
		UnitID:           unitID,
		AnalyzedAt:       now,
		TotalCheckpoints: hist.Len(),
		CloningAlerts:    anomalies,
		FrequencyAlert:   freqAlert,
		RiskTier:         verdict.Tier,
		RiskProbability:  verdict.Probability,
		Reasons:          verdict.Reasons,
		OverallStatus:    model.StatusSafe,
	}

	critical := detect.HasCritical(anomalies)
	tierFlagged := verdict.Tier == model.TierSuspicious || verdict.Tier == model.TierCounterfeit
	if critical || freqAlert != nil || tierFlagged {
		report.OverallStatus = model.StatusSuspicious

		// One failed attempt per request, tagged by the worst signal.
		attemptType := model.AttemptSuspiciousFrequency
		reason := "scan rate exceeded the allowed window"
		switch {
		case critical:
			attemptType = model.AttemptAnomalyDetected
			reason = "physically impossible transition speed"
		case freqAlert != nil:
			// keep the frequency attempt
		default:
			attemptType = model.AttemptAnomalyDetected
			reason = fmt.Sprintf("risk tier %s at probability %.2f", verdict.Tier, verdict.Probability)
		}
		s.recordFailure(ctx, unitID, attemptType, reason, now)
	}

	metrics.RecordVerification(strings.ToLower(string(report.OverallStatus)))
	return VerifyResult{Unit: unit, Report: report, Features: vector, Verdict: verdict}, nil
}

// batchStats loads sibling failure counts for batch-health scoring. Lookup
// faults degrade to the neutral zero value.
func (s *Service) batchStats(ctx context.Context, batchID string) features.BatchStats {
	siblings, err := s.store.UnitsInBatch(ctx, batchID)
	if err != nil {
		s.logger.Warn(ctx, "batch lookup failed", logger.String("batchID", batchID), logger.Error(err))
		return features.BatchStats{}
	}
	stats := features.BatchStats{TotalUnits: len(siblings)}
	for _, sib := range siblings {
		failed, err := s.store.HasFailedAttempt(ctx, sib.UniqueID)
		if err != nil {
			s.logger.Warn(ctx, "failed attempt lookup failed",
				logger.String("unitID", sib.UniqueID), logger.Error(err))
			continue
		}
		if failed {
			stats.UnitsWithFailures++
		}
	}
	return stats
}

func (s *Service) recordFailure(ctx context.Context, unitID string, t model.AttemptType, reason string, now time.Time) {
	attempt := model.FailedAttempt{
		ScannedID:   unitID,
		AttemptType: t,
		Reason:      reason,
		Timestamp:   now,
	}
	if err := s.store.AppendFailedAttempt(ctx, attempt); err != nil {
		s.logger.Error(ctx, "recording failed attempt",
			logger.String("unitID", unitID), logger.Error(err))
		return
	}
	metrics.RecordFailedAttempt(string(t))
}
