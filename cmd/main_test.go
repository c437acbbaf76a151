package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"meditrace/internal/adapters/http/api"
	"meditrace/internal/adapters/http/swagger"
	app "meditrace/internal/app"
	"meditrace/internal/config"
	"meditrace/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("MEDITRACE_ADDR", ":8080")
			_ = os.Setenv("MEDITRACE_QUEUE_SIZE", "1000")
			_ = os.Setenv("MEDITRACE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("MEDITRACE_ADDR")
				_ = os.Unsetenv("MEDITRACE_QUEUE_SIZE")
				_ = os.Unsetenv("MEDITRACE_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
					app.WithClassifierStrategy("rules"),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP route registration", func() {
			svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(8))
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			swagger.Register(ctx, mux)
			api.NewServer(svc, svc).Register(ctx, mux)

			convey.Convey("Then the server wires up without panicking", func() {
				srv := &http.Server{
					Addr:              ":0",
					Handler:           mux,
					ReadHeaderTimeout: time.Second,
				}
				convey.So(srv, convey.ShouldNotBeNil)
				convey.So(srv.Handler, convey.ShouldNotBeNil)
			})
		})
	})
}
