package classify

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"meditrace/internal/domain/features"
	"meditrace/internal/domain/model"
)

func cleanVector() features.Vector {
	return features.Vector{
		ScanFrequency:       1.0,
		UniqueLocations:     1.0,
		Completeness:        1.0,
		LicenseValidity:     1.0,
		PriceDeviation:      1.0,
		TemporalConsistency: 1.0,
		GeofenceCompliance:  1.0,
		SpeedAnomaly:        0.0,
		BatchHealth:         1.0,
		BusinessHours:       1.0,
	}
}

func dirtyVector() features.Vector {
	return features.Vector{SpeedAnomaly: 1.0}
}

func TestRulesClassify(t *testing.T) {
	c := NewRules()

	Convey("Given a perfectly clean vector", t, func() {
		verdict := c.Classify(cleanVector())

		Convey("Then the unit is authentic with zero probability", func() {
			So(verdict.Probability, ShouldEqual, 0.0)
			So(verdict.Tier, ShouldEqual, model.TierAuthentic)
			So(verdict.Reasons, ShouldBeEmpty)
		})
	})

	Convey("Given the worst possible vector", t, func() {
		verdict := c.Classify(dirtyVector())

		Convey("Then the unit is counterfeit with full probability", func() {
			So(verdict.Probability, ShouldEqual, 1.0)
			So(verdict.Tier, ShouldEqual, model.TierCounterfeit)
			So(verdict.Reasons, ShouldNotBeEmpty)
		})
	})

	Convey("Given an invalid license on an otherwise clean unit", t, func() {
		v := cleanVector()
		v.LicenseValidity = 0.0
		verdict := c.Classify(v)

		Convey("Then the license reason appears", func() {
			So(verdict.Reasons, ShouldContain, "manufacturer license number is missing or malformed")
			So(verdict.Probability, ShouldBeGreaterThan, 0.0)
		})
	})
}

func TestSpeedMonotonicity(t *testing.T) {
	c := NewRules()

	Convey("Given speed anomaly rising with all else fixed", t, func() {
		prev := -1.0
		for _, severity := range []float64{0.0, 0.3, 0.6, 1.0} {
			v := cleanVector()
			v.SpeedAnomaly = severity
			p := c.Classify(v).Probability

			So(p, ShouldBeGreaterThanOrEqualTo, prev)
			prev = p
		}
	})
}

func TestTierBoundaries(t *testing.T) {
	Convey("Given probabilities at the tier edges", t, func() {
		So(TierFor(0.0), ShouldEqual, model.TierAuthentic)
		So(TierFor(0.49), ShouldEqual, model.TierAuthentic)
		So(TierFor(0.50), ShouldEqual, model.TierReview)
		So(TierFor(0.74), ShouldEqual, model.TierReview)
		So(TierFor(0.75), ShouldEqual, model.TierSuspicious)
		So(TierFor(0.84), ShouldEqual, model.TierSuspicious)
		So(TierFor(0.85), ShouldEqual, model.TierCounterfeit)
		So(TierFor(1.0), ShouldEqual, model.TierCounterfeit)
	})
}

func TestStrategySelection(t *testing.T) {
	Convey("Given strategy names", t, func() {
		Convey("The rules strategy resolves by name", func() {
			So(New("rules").Name(), ShouldEqual, "rules")
		})
		Convey("Unknown strategies fall back to rules", func() {
			So(New("gradient-forest").Name(), ShouldEqual, "rules")
		})
		Convey("An empty strategy uses the default", func() {
			So(New("").Name(), ShouldEqual, "rules")
		})
	})
}

func TestExplanationsAreReproducible(t *testing.T) {
	c := NewRules()

	Convey("Given the same vector classified twice", t, func() {
		v := features.Vector{
			ScanFrequency:       0.0,
			UniqueLocations:     0.5,
			Completeness:        0.25,
			LicenseValidity:     0.0,
			PriceDeviation:      0.0,
			TemporalConsistency: 0.3,
			GeofenceCompliance:  0.0,
			SpeedAnomaly:        1.0,
			BatchHealth:         0.4,
			BusinessHours:       0.3,
		}
		a := c.Classify(v)
		b := c.Classify(v)

		Convey("Then verdicts are identical", func() {
			So(a.Probability, ShouldEqual, b.Probability)
			So(a.Tier, ShouldEqual, b.Tier)
			So(a.Reasons, ShouldResemble, b.Reasons)
		})
	})
}
