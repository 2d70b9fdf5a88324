package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/coachcore/privacyd/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.JobQueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxRecordDepth, convey.ShouldEqual, 64)
			convey.So(cfg.MaxExpiringLimit, convey.ShouldEqual, 100)
			convey.So(cfg.JanitorIntervalSeconds, convey.ShouldEqual, 60)
			convey.So(cfg.DefaultLevel, convey.ShouldEqual, "high")
			convey.So(cfg.RetentionOverrides, convey.ShouldBeEmpty)
		})
	})
}
