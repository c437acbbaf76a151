package series

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"meditrace/internal/domain/model"
)

func cp(unit string, loc string, at time.Time) model.Checkpoint {
	return model.Checkpoint{UnitID: unit, Location: loc, Timestamp: at}
}

func TestSeriesOrdering(t *testing.T) {
	Convey("Given checkpoints recorded out of order", t, func() {
		base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		s := New([]model.Checkpoint{
			cp("u", "Chennai", base.Add(6*time.Hour)),
			cp("u", "Bangalore", base),
			cp("u", "Mumbai", base.Add(30*time.Hour)),
		})

		Convey("Then the series is in ascending timestamp order", func() {
			pts := s.Points()
			So(s.Len(), ShouldEqual, 3)
			So(pts[0].Location, ShouldEqual, "Bangalore")
			So(pts[1].Location, ShouldEqual, "Chennai")
			So(pts[2].Location, ShouldEqual, "Mumbai")
		})

		Convey("Then first and last reflect the ordering", func() {
			first, ok := s.First()
			So(ok, ShouldBeTrue)
			So(first.Location, ShouldEqual, "Bangalore")

			last, ok := s.Last()
			So(ok, ShouldBeTrue)
			So(last.Location, ShouldEqual, "Mumbai")
		})

		Convey("Then transitions walk adjacent pairs", func() {
			ts := s.Transitions()
			So(len(ts), ShouldEqual, 2)
			So(ts[0].From.Location, ShouldEqual, "Bangalore")
			So(ts[0].To.Location, ShouldEqual, "Chennai")
			So(ts[1].To.Location, ShouldEqual, "Mumbai")
		})

		Convey("Then the span covers first to last", func() {
			So(s.SpanHours(), ShouldEqual, 30)
		})
	})

	Convey("Given a short history", t, func() {
		Convey("An empty series has no transitions", func() {
			s := New(nil)
			So(s.Len(), ShouldEqual, 0)
			So(s.Transitions(), ShouldBeNil)

			_, ok := s.First()
			So(ok, ShouldBeFalse)
		})

		Convey("A single checkpoint has no transitions", func() {
			s := New([]model.Checkpoint{cp("u", "Mumbai", time.Now())})
			So(s.Transitions(), ShouldBeNil)
			So(s.SpanHours(), ShouldEqual, 0)
		})
	})

	Convey("Given the caller mutates its input slice", t, func() {
		base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		in := []model.Checkpoint{cp("u", "Mumbai", base)}
		s := New(in)
		in[0].Location = "elsewhere"

		Convey("Then the series keeps its own copy", func() {
			So(s.Points()[0].Location, ShouldEqual, "Mumbai")
		})
	})
}
