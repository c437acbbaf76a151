package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"meditrace/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.ClassifierStrategy, convey.ShouldEqual, "rules")
			convey.So(cfg.FrequencyWindowMinutes, convey.ShouldEqual, 60)
			convey.So(cfg.FrequencyMaxScans, convey.ShouldEqual, 10)
		})
	})
}
