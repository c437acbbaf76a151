package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"meditrace/internal/adapters/repository"
	"meditrace/internal/domain/model"
	"meditrace/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func startedService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithWorkerCount(2),
		WithQueueSize(64),
		WithDedupeSize(128),
	}
	svc := New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("starting service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	convey.Convey("Given a new service", t, func() {
		svc := New(WithWorkerCount(1), WithQueueSize(8))
		ctx := context.Background()

		convey.Convey("Start brings up every component", func() {
			err := svc.Start(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.started, convey.ShouldBeTrue)
			convey.So(svc.store, convey.ShouldNotBeNil)
			convey.So(svc.classifier.Name(), convey.ShouldEqual, "rules")

			convey.Convey("Start is idempotent", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
			})

			convey.Convey("Stop shuts down and is idempotent", func() {
				svc.Stop()
				convey.So(svc.started, convey.ShouldBeFalse)
				svc.Stop()
			})
		})
	})
}

func TestServiceUnknownStoreDriver(t *testing.T) {
	convey.Convey("Given a service with a bogus store driver", t, func() {
		svc := New(WithStore("etcd", ""))

		convey.Convey("Start fails", func() {
			err := svc.Start(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, repository.ErrUnknownDriver), convey.ShouldBeTrue)
		})
	})
}

func TestSeenAndRecord(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		convey.Convey("The first sighting of a scan id is not a duplicate", func() {
			convey.So(svc.SeenAndRecord(ctx, "scan-1"), convey.ShouldBeFalse)

			convey.Convey("The second sighting is", func() {
				convey.So(svc.SeenAndRecord(ctx, "scan-1"), convey.ShouldBeTrue)
			})

			convey.Convey("Unrecord makes it fresh again", func() {
				svc.Unrecord(ctx, "scan-1")
				convey.So(svc.SeenAndRecord(ctx, "scan-1"), convey.ShouldBeFalse)
			})
		})
	})
}

func TestEnqueue(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		event := model.ScanEvent{
			ScanID:    "scan-abc",
			UnitID:    "MED-1",
			Location:  "Mumbai",
			Latitude:  19.0760,
			Longitude: 72.8777,
			EventType: model.EventConsumerScan,
			Timestamp: time.Now().UTC(),
		}

		convey.Convey("A fresh event is accepted and persisted", func() {
			convey.So(svc.Enqueue(ctx, event), convey.ShouldBeTrue)
			waitForCheckpoints(t, svc, "MED-1", 1)

			cps, err := svc.store.Checkpoints(ctx, "MED-1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(cps[0].Location, convey.ShouldEqual, "Mumbai")
			convey.So(cps[0].EventType, convey.ShouldEqual, model.EventConsumerScan)
		})

		convey.Convey("Events without a timestamp get the current time", func() {
			anon := event
			anon.ScanID = "scan-xyz"
			anon.Timestamp = time.Time{}
			convey.So(svc.Enqueue(ctx, anon), convey.ShouldBeTrue)
			waitForCheckpoints(t, svc, "MED-1", 1)

			cps, err := svc.store.Checkpoints(ctx, "MED-1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(cps[0].Timestamp.IsZero(), convey.ShouldBeFalse)
		})
	})
}

func TestIssueBatch(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		convey.Convey("Issuing a batch mints the requested quantity", func() {
			res, err := svc.IssueBatch(ctx, BatchRequest{
				DrugName:     "Paracetamol 500mg",
				GenericName:  "Acetaminophen",
				Manufacturer: "Acme Pharma",
				LicenseNo:    "KA-MFG-2024-1234",
				MRP:          30,
				Quantity:     5,
				Location:     "Bangalore",
				Latitude:     12.9716,
				Longitude:    77.5946,
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.BatchID, convey.ShouldStartWith, "BATCH-")
			convey.So(res.UnitIDs, convey.ShouldHaveLength, 5)

			convey.Convey("Each unit exists with its production checkpoint", func() {
				unit, err := svc.store.Unit(ctx, res.UnitIDs[0])
				convey.So(err, convey.ShouldBeNil)
				convey.So(unit.BatchID, convey.ShouldEqual, res.BatchID)
				convey.So(unit.DrugName, convey.ShouldEqual, "Paracetamol 500mg")

				cps, err := svc.store.Checkpoints(ctx, res.UnitIDs[0])
				convey.So(err, convey.ShouldBeNil)
				convey.So(cps, convey.ShouldHaveLength, 1)
				convey.So(cps[0].EventType, convey.ShouldEqual, model.EventFactoryProduction)
				convey.So(cps[0].Location, convey.ShouldEqual, "Bangalore")
			})
		})

		convey.Convey("Invalid requests are rejected", func() {
			_, err := svc.IssueBatch(ctx, BatchRequest{Quantity: 1})
			convey.So(errors.Is(err, ErrInvalidBatch), convey.ShouldBeTrue)

			_, err = svc.IssueBatch(ctx, BatchRequest{DrugName: "X", Quantity: 0})
			convey.So(err, convey.ShouldNotBeNil)

			_, err = svc.IssueBatch(ctx, BatchRequest{DrugName: "X", Quantity: 1, MRP: -1})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestVerifyUnknownID(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		convey.Convey("Verifying a never-issued id reports it as fake", func() {
			_, err := svc.Verify(ctx, "MED-never-issued")
			convey.So(errors.Is(err, ErrUnknownUnit), convey.ShouldBeTrue)

			convey.Convey("And the failed attempt is recorded", func() {
				failed, err := svc.store.HasFailedAttempt(ctx, "MED-never-issued")
				convey.So(err, convey.ShouldBeNil)
				convey.So(failed, convey.ShouldBeTrue)

				n, err := svc.store.CountFailedAttempts(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	convey.Convey("Given a started service with one issued batch", t, func() {
		svc := startedService(t)
		ctx := context.Background()

		_, err := svc.IssueBatch(ctx, BatchRequest{
			DrugName:  "Dolo 650",
			LicenseNo: "MH-2023-55",
			MRP:       32,
			Quantity:  3,
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Stats reflect the state", func() {
			stats := svc.GetStats()
			convey.So(stats["started"], convey.ShouldBeTrue)
			convey.So(stats["totalUnits"], convey.ShouldEqual, 3)
			convey.So(stats["failedAttempts"], convey.ShouldEqual, 0)
			convey.So(stats["recentFailedAttempts"], convey.ShouldEqual, 0)
			convey.So(stats["classifier"], convey.ShouldEqual, "rules")
		})
	})
}
