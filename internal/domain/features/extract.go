package features

import (
	"math"
	"strings"
	"time"

	"meditrace/internal/domain/detect"
	"meditrace/internal/domain/geo"
	"meditrace/internal/domain/model"
	"meditrace/internal/domain/series"
)

// BatchStats summarizes the health of the batch a unit belongs to. Unknown
// batches use the zero value.
type BatchStats struct {
	// TotalUnits is the number of sibling units sharing the batch id.
	TotalUnits int
	// UnitsWithFailures is how many of them have at least one recorded
	// failed verification attempt.
	UnitsWithFailures int
}

// Extractor computes feature vectors. Extraction is a pure function of its
// arguments; the extractor only carries the reference tables.
type Extractor struct {
	ref *Reference
}

// NewExtractor returns an extractor over the given reference tables. A nil
// reference uses the built-in ones.
func NewExtractor(ref *Reference) *Extractor {
	if ref == nil {
		ref = NewReference()
	}
	return &Extractor{ref: ref}
}

// Extract computes the full vector for one unit. Every sub-scorer is total:
// degenerate histories produce the documented defaults, never a panic.
func (e *Extractor) Extract(unit model.TrackedUnit, s series.Series, batch BatchStats) Vector {
	return Vector{
		ScanFrequency:       scanFrequencyScore(s),
		UniqueLocations:     uniqueLocationsRatio(s),
		Completeness:        completenessScore(s),
		LicenseValidity:     licenseValidityScore(unit.LicenseNo),
		PriceDeviation:      e.priceDeviationScore(unit.DrugName, unit.MRP),
		TemporalConsistency: e.temporalConsistencyScore(s),
		GeofenceCompliance:  e.geofenceComplianceScore(s),
		SpeedAnomaly:        speedAnomalySeverity(s),
		BatchHealth:         batchHealthScore(batch),
		BusinessHours:       businessHoursScore(s),
	}
}

// scanFrequencyScore bands the average scans per day across the history.
// Slow-moving goods score high; rapid-fire scanning scores low.
func scanFrequencyScore(s series.Series) float64 {
	if s.Len() < 2 {
		return 1.0
	}
	spanDays := s.SpanHours() / 24
	if spanDays <= 0 {
		// All scans at the same instant reads as the fastest possible rate.
		return 0.0
	}
	perDay := float64(s.Len()) / spanDays
	switch {
	case perDay <= 0.5:
		return 1.0
	case perDay <= 2:
		return 0.7
	case perDay <= 5:
		return 0.3
	default:
		return 0.0
	}
}

// uniqueLocationsRatio is distinct positions over total positioned
// checkpoints, with coordinates rounded to three decimals (about 100 m).
func uniqueLocationsRatio(s series.Series) float64 {
	type cell struct{ lat, lon float64 }
	seen := make(map[cell]struct{})
	positioned := 0
	for _, cp := range s.Points() {
		p := geo.Point{Lat: cp.Latitude, Lon: cp.Longitude}
		if p.IsUnknown() {
			continue
		}
		positioned++
		seen[cell{round3(cp.Latitude), round3(cp.Longitude)}] = struct{}{}
	}
	if positioned == 0 {
		return 1.0
	}
	return float64(len(seen)) / float64(positioned)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// canonicalStages are the expected supply-chain phases, each recognized by
// any of its keyword synonyms in the checkpoint event type.
var canonicalStages = [][]string{
	{"production", "manufactur", "factory"},
	{"quality", "inspection", "qc"},
	{"warehouse", "storage", "receipt"},
	{"retail", "distribution", "pharmacy", "dispens"},
}

// completenessScore is the fraction of canonical stages with at least one
// matching checkpoint. Fewer than two checkpoints is insufficient evidence
// of a broken chain, so the score stays at its clean default.
func completenessScore(s series.Series) float64 {
	if s.Len() < 2 {
		return 1.0
	}
	matched := 0
	for _, synonyms := range canonicalStages {
		for _, cp := range s.Points() {
			if stageMatches(cp.EventType, synonyms) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(canonicalStages))
}

func stageMatches(eventType string, synonyms []string) bool {
	et := strings.ToLower(eventType)
	for _, syn := range synonyms {
		if strings.Contains(et, syn) {
			return true
		}
	}
	return false
}

// licenseValidityScore checks the license number for plausible structure:
// non-empty, at least one digit, at least one separator.
func licenseValidityScore(license string) float64 {
	license = strings.TrimSpace(license)
	if license == "" {
		return 0.0
	}
	hasDigit := strings.ContainsAny(license, "0123456789")
	hasSeparator := strings.ContainsAny(license, "-/._ ")
	if hasDigit && hasSeparator {
		return 1.0
	}
	return 0.0
}

// priceDeviationScore bands the relative deviation of the declared MRP from
// the market reference. No reference price means no judgment.
func (e *Extractor) priceDeviationScore(drugName string, mrp float64) float64 {
	ref, ok := e.ref.MarketPrice(drugName)
	if !ok || ref <= 0 {
		return 1.0
	}
	deviation := math.Abs(mrp-ref) / ref
	switch {
	case deviation <= 0.10:
		return 1.0
	case deviation <= 0.30:
		return 0.7
	case deviation <= 0.50:
		return 0.3
	default:
		return 0.0
	}
}

// temporalConsistencyScore compares each leg's elapsed time to the expected
// route duration and averages the banded ratios.
func (e *Extractor) temporalConsistencyScore(s series.Series) float64 {
	transitions := s.Transitions()
	if len(transitions) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, t := range transitions {
		expected := e.ref.RouteHours(t.From.Location, t.To.Location)
		actual := t.To.Timestamp.Sub(t.From.Timestamp).Hours()
		sum += temporalRatioScore(actual / expected)
	}
	return sum / float64(len(transitions))
}

func temporalRatioScore(ratio float64) float64 {
	switch {
	case ratio >= 0.5 && ratio <= 2.0:
		return 1.0
	case ratio > 2.0 && ratio <= 3.0:
		return 0.7
	case ratio < 0.3:
		return 0.3
	default:
		return 0.5
	}
}

// geofenceComplianceScore is the fraction of checkpoints inside the
// operational-region allow-list.
func (e *Extractor) geofenceComplianceScore(s series.Series) float64 {
	if s.Len() == 0 {
		return 1.0
	}
	inside := 0
	for _, cp := range s.Points() {
		if e.ref.InRegion(cp.Location) {
			inside++
		}
	}
	return float64(inside) / float64(s.Len())
}

// speedAnomalySeverity bands the worst pairwise speed. Higher is worse;
// this is the vector's only BadHigh feature.
func speedAnomalySeverity(s series.Series) float64 {
	if s.Len() < 2 {
		return 0.0
	}
	max := detect.MaxSpeedKmh(s)
	switch {
	case max < 200:
		return 0.0
	case max < 500:
		return 0.3
	case max < 900:
		return 0.6
	default:
		return 1.0
	}
}

// batchHealthScore is one minus the fraction of sibling units with failed
// verification attempts. Single-unit and unknown batches are healthy.
func batchHealthScore(batch BatchStats) float64 {
	if batch.TotalUnits <= 1 {
		return 1.0
	}
	failed := batch.UnitsWithFailures
	if failed < 0 {
		failed = 0
	}
	if failed > batch.TotalUnits {
		failed = batch.TotalUnits
	}
	return 1.0 - float64(failed)/float64(batch.TotalUnits)
}

// businessHoursScore bands the fraction of scans inside working windows,
// Monday to Friday 09:00 to 18:00 and Saturday 09:00 to 13:00.
func businessHoursScore(s series.Series) float64 {
	if s.Len() == 0 {
		return 1.0
	}
	within := 0
	for _, cp := range s.Points() {
		if inBusinessHours(cp.Timestamp) {
			within++
		}
	}
	fraction := float64(within) / float64(s.Len())
	switch {
	case fraction >= 0.8:
		return 1.0
	case fraction >= 0.5:
		return 0.7
	default:
		return 0.3
	}
}

func inBusinessHours(t time.Time) bool {
	h := t.Hour()
	switch t.Weekday() {
	case time.Saturday:
		return h >= 9 && h < 13
	case time.Sunday:
		return false
	default:
		return h >= 9 && h < 18
	}
}
