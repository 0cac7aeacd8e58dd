package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobrank/internal/config"
)

// setenv applies env overrides and returns a restore func for Convey's Reset.
func setenv(pairs map[string]string) func() {
	for k, v := range pairs {
		os.Setenv(k, v)
	}
	return func() {
		for k := range pairs {
			os.Unsetenv(k)
		}
	}
}

func TestDefaults(t *testing.T) {
	Convey("Given a fresh configuration", t, func() {
		cfg := config.New()

		Convey("Then sensible defaults are set", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.QueueSize, ShouldEqual, 10_000)
			So(cfg.WorkerCount, ShouldEqual, runtime.NumCPU()*2)
			So(cfg.PrivilegedRoles, ShouldResemble, []string{"account_manager", "sales_person", "ceo"})
			So(cfg.SchemeFile, ShouldBeEmpty)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		ctx := context.Background()

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults come through", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.QueueSize, ShouldEqual, 10_000)
			})
		})

		Convey("When environment variables override values", func() {
			Reset(setenv(map[string]string{
				"JOBRANK_ADDR":         ":8081",
				"JOBRANK_QUEUE_SIZE":   "64",
				"JOBRANK_WORKER_COUNT": "3",
				"JOBRANK_LOG_LEVEL":    "debug",
			}))

			cfg, err := config.Load(ctx)

			Convey("Then the overrides win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8081")
				So(cfg.QueueSize, ShouldEqual, 64)
				So(cfg.WorkerCount, ShouldEqual, 3)
				So(cfg.LogLevel, ShouldEqual, "debug")
			})
		})

		Convey("When a config file is provided", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			yaml := "addr: \":7070\"\nqueue_size: 500\nlog_level: warn\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			Reset(setenv(map[string]string{"JOBRANK_CONFIG": path}))

			Convey("Then file values layer over defaults", func() {
				cfg, err := config.Load(ctx)

				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.QueueSize, ShouldEqual, 500)
				So(cfg.LogLevel, ShouldEqual, "warn")
				So(cfg.WorkerCount, ShouldEqual, runtime.NumCPU()*2)
			})

			Convey("And env vars still win over the file", func() {
				Reset(setenv(map[string]string{"JOBRANK_ADDR": ":6060"}))

				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.QueueSize, ShouldEqual, 500)
			})
		})

		Convey("When the config file is missing", func() {
			Reset(setenv(map[string]string{
				"JOBRANK_CONFIG": filepath.Join(t.TempDir(), "nope.yaml"),
			}))

			_, err := config.Load(ctx)
			So(err, ShouldWrap, config.ErrLoadConfig)
		})

		Convey("When an override is invalid", func() {
			Reset(setenv(map[string]string{"JOBRANK_QUEUE_SIZE": "0"}))

			_, err := config.Load(ctx)
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When the worker count is invalid", func() {
			Reset(setenv(map[string]string{"JOBRANK_WORKER_COUNT": "-1"}))

			_, err := config.Load(ctx)
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
