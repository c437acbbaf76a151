package detect

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"meditrace/internal/domain/model"
	"meditrace/internal/domain/series"
)

func checkpointAt(loc string, lat, lon float64, at time.Time) model.Checkpoint {
	return model.Checkpoint{
		UnitID:    "MED-1",
		Location:  loc,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: at,
	}
}

func TestTransitions(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	mumbai := func(at time.Time) model.Checkpoint { return checkpointAt("Mumbai", 19.0760, 72.8777, at) }
	delhi := func(at time.Time) model.Checkpoint { return checkpointAt("Delhi", 28.7041, 77.1025, at) }

	Convey("Given a Mumbai to Delhi transition", t, func() {
		Convey("When it takes ten minutes", func() {
			s := series.New([]model.Checkpoint{mumbai(t0), delhi(t0.Add(10 * time.Minute))})
			anomalies := Transitions(s)

			Convey("Then cloning is suspected at critical severity", func() {
				So(len(anomalies), ShouldEqual, 1)
				So(anomalies[0].Type, ShouldEqual, model.AnomalyCloningSuspected)
				So(anomalies[0].Severity, ShouldEqual, model.SeverityCritical)
				So(anomalies[0].SpeedKmh, ShouldBeGreaterThan, 6000)
				So(HasCritical(anomalies), ShouldBeTrue)
			})
		})

		Convey("When it takes twenty four hours", func() {
			s := series.New([]model.Checkpoint{mumbai(t0), delhi(t0.Add(24 * time.Hour))})

			Convey("Then road speed raises no anomaly", func() {
				So(Transitions(s), ShouldBeEmpty)
			})
		})

		Convey("When it takes four hours", func() {
			s := series.New([]model.Checkpoint{mumbai(t0), delhi(t0.Add(4 * time.Hour))})
			anomalies := Transitions(s)

			Convey("Then the speed is unusual but feasible", func() {
				So(len(anomalies), ShouldEqual, 1)
				So(anomalies[0].Type, ShouldEqual, model.AnomalyUnusualSpeed)
				So(anomalies[0].Severity, ShouldEqual, model.SeverityMedium)
				So(HasCritical(anomalies), ShouldBeFalse)
			})
		})
	})

	Convey("Given degenerate histories", t, func() {
		Convey("A single checkpoint yields no anomalies", func() {
			s := series.New([]model.Checkpoint{mumbai(t0)})
			So(Transitions(s), ShouldBeEmpty)
			So(MaxSpeedKmh(s), ShouldEqual, 0)
		})

		Convey("A transition with a missing position fix is skipped", func() {
			s := series.New([]model.Checkpoint{
				mumbai(t0),
				checkpointAt("unknown scanner", 0, 0, t0.Add(time.Minute)),
			})
			So(Transitions(s), ShouldBeEmpty)
		})

		Convey("A zero-duration relocation is reported with a finite speed", func() {
			s := series.New([]model.Checkpoint{mumbai(t0), delhi(t0)})
			anomalies := Transitions(s)
			So(len(anomalies), ShouldEqual, 1)
			So(anomalies[0].Severity, ShouldEqual, model.SeverityCritical)
			So(anomalies[0].SpeedKmh, ShouldBeLessThanOrEqualTo, 1e6)
		})
	})
}

type fixedCounter struct {
	count int
	err   error
	since time.Time
}

func (f *fixedCounter) CountCheckpointsSince(_ context.Context, _ string, since time.Time) (int, error) {
	f.since = since
	return f.count, f.err
}

func TestFrequencyGuard(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a frequency guard with defaults", t, func() {
		Convey("When the scan count is at the threshold", func() {
			guard := NewFrequencyGuard(&fixedCounter{count: 10})
			alert, err := guard.Check(context.Background(), "MED-1", now)

			Convey("Then it stays quiet", func() {
				So(err, ShouldBeNil)
				So(alert, ShouldBeNil)
			})
		})

		Convey("When the scan count exceeds the threshold", func() {
			counter := &fixedCounter{count: 25}
			guard := NewFrequencyGuard(counter)
			alert, err := guard.Check(context.Background(), "MED-1", now)

			Convey("Then it fires with the count and window", func() {
				So(err, ShouldBeNil)
				So(alert, ShouldNotBeNil)
				So(alert.Alert, ShouldEqual, FrequencyAlertName)
				So(alert.Severity, ShouldEqual, model.SeverityHigh)
				So(alert.ScanCount, ShouldEqual, 25)
				So(alert.WindowHours, ShouldEqual, 1.0)
			})

			Convey("Then it queried the trailing hour", func() {
				So(counter.since.Equal(now.Add(-time.Hour)), ShouldBeTrue)
			})
		})
	})

	Convey("Given custom options", t, func() {
		counter := &fixedCounter{count: 4}
		guard := NewFrequencyGuard(counter, WithWindow(30*time.Minute), WithThreshold(3))
		alert, err := guard.Check(context.Background(), "MED-1", now)

		Convey("Then the overrides apply", func() {
			So(err, ShouldBeNil)
			So(alert, ShouldNotBeNil)
			So(alert.ScanCount, ShouldEqual, 4)
			So(counter.since.Equal(now.Add(-30*time.Minute)), ShouldBeTrue)
		})
	})
}
