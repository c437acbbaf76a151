// Package detect holds the rule-based anomaly checks that run alongside the
// feature pipeline: the impossible-speed cloning detector and the
// scan-frequency guard.
package detect

import (
	"math"

	"meditrace/internal/domain/geo"
	"meditrace/internal/domain/model"
	"meditrace/internal/domain/series"
)

// Speed thresholds in km/h, applied per transition.
const (
	// CloningSpeedKmh is the hard ceiling above commercial flight speed.
	// Faster than this means the identifier appeared in two places at once.
	CloningSpeedKmh = 900.0
	// UnusualSpeedKmh is the ceiling for road transport.
	UnusualSpeedKmh = 120.0
	// UnusualMinDistanceKm suppresses the unusual-speed check for short
	// hops where GPS jitter dominates.
	UnusualMinDistanceKm = 50.0
)

// reportSpeedCap bounds the speed written into anomaly records. A
// zero-duration transition has infinite implied speed, which JSON cannot
// encode.
const reportSpeedCap = 1e6

// Transitions scans every adjacent checkpoint pair and returns the
// anomalies found. Pairs where either endpoint lacks a position fix are
// skipped. Fewer than two checkpoints yields no anomalies.
func Transitions(s series.Series) []model.TransitionAnomaly {
	var out []model.TransitionAnomaly
	for _, t := range s.Transitions() {
		from := geo.Point{Lat: t.From.Latitude, Lon: t.From.Longitude}
		to := geo.Point{Lat: t.To.Latitude, Lon: t.To.Longitude}
		if from.IsUnknown() || to.IsUnknown() {
			continue
		}

		dist := geo.DistanceKm(from, to)
		hours := t.To.Timestamp.Sub(t.From.Timestamp).Hours()
		speed := geo.SpeedKmh(dist, hours)

		switch {
		case speed > CloningSpeedKmh:
			out = append(out, anomaly(t, dist, hours, speed,
				model.AnomalyCloningSuspected, model.SeverityCritical, CloningSpeedKmh,
				"identifier likely cloned onto multiple items; quarantine the batch and investigate both scan sites"))
		case speed > UnusualSpeedKmh && dist > UnusualMinDistanceKm:
			out = append(out, anomaly(t, dist, hours, speed,
				model.AnomalyUnusualSpeed, model.SeverityMedium, UnusualSpeedKmh,
				"verify transport documentation; speed suggests an unrecorded air freight leg"))
		}
	}
	return out
}

func anomaly(t series.Transition, dist, hours, speed float64, typ model.AnomalyType, sev model.Severity, limit float64, rec string) model.TransitionAnomaly {
	return model.TransitionAnomaly{
		Type:           typ,
		Severity:       sev,
		FromLocation:   t.From.Location,
		ToLocation:     t.To.Location,
		DistanceKm:     dist,
		ElapsedHours:   hours,
		SpeedKmh:       math.Min(speed, reportSpeedCap),
		MaxAllowedKmh:  limit,
		Recommendation: rec,
	}
}

// MaxSpeedKmh returns the highest implied speed across all transitions with
// known endpoints. A series without such transitions yields zero. The result
// may be +Inf for zero-duration travel.
func MaxSpeedKmh(s series.Series) float64 {
	max := 0.0
	for _, t := range s.Transitions() {
		from := geo.Point{Lat: t.From.Latitude, Lon: t.From.Longitude}
		to := geo.Point{Lat: t.To.Latitude, Lon: t.To.Longitude}
		if from.IsUnknown() || to.IsUnknown() {
			continue
		}
		speed := geo.SpeedKmh(geo.DistanceKm(from, to), t.To.Timestamp.Sub(t.From.Timestamp).Hours())
		if speed > max {
			max = speed
		}
	}
	return max
}

// HasCritical reports whether any anomaly in the list is CRITICAL.
func HasCritical(anomalies []model.TransitionAnomaly) bool {
	for _, a := range anomalies {
		if a.Severity == model.SeverityCritical {
			return true
		}
	}
	return false
}
