package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobrank/internal/adapters/http/api"
	app "github.com/okian/jobrank/internal/app"
	"github.com/okian/jobrank/internal/config"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("JOBRANK_ADDR", ":8080")
			_ = os.Setenv("JOBRANK_QUEUE_SIZE", "1000")
			_ = os.Setenv("JOBRANK_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("JOBRANK_ADDR")
				_ = os.Unsetenv("JOBRANK_QUEUE_SIZE")
				_ = os.Unsetenv("JOBRANK_WORKER_COUNT")
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
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing the system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing the service metrics updater", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing system metrics update", func() {
			convey.So(func() {
				updateSystemMetrics()
			}, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("JOBRANK_ADDR", ":8080")
			_ = os.Setenv("JOBRANK_QUEUE_SIZE", "1000")
			_ = os.Setenv("JOBRANK_WORKER_COUNT", "2")
			defer func() {
				_ = os.Unsetenv("JOBRANK_ADDR")
				_ = os.Unsetenv("JOBRANK_QUEUE_SIZE")
				_ = os.Unsetenv("JOBRANK_WORKER_COUNT")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				svc := app.New(
					app.WithWorkerCount(cfg.WorkerCount),
					app.WithQueueSize(cfg.QueueSize),
					app.WithPrivilegedRoles(cfg.PrivilegedRoles),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				convey.So(mux, convey.ShouldNotBeNil)

				server.Register(ctx, mux)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("JOBRANK_ADDR", "")
			defer func() { _ = os.Unsetenv("JOBRANK_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with zero options", func() {
			convey.Convey("Then defaults take over", func() {
				svc := app.New(
					app.WithWorkerCount(0),
					app.WithQueueSize(0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
