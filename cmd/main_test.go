package main

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/reflex/internal/adapters/http/api"
	app "github.com/okian/reflex/internal/app"
	"github.com/okian/reflex/internal/config"
	"github.com/okian/reflex/pkg/logger"
	"github.com/okian/reflex/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainComponents(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("REFLEX_ADDR", ":8080")
			_ = os.Setenv("REFLEX_RATE_LIMIT", "5")
			defer func() {
				_ = os.Unsetenv("REFLEX_ADDR")
				_ = os.Unsetenv("REFLEX_RATE_LIMIT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RateLimit, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When testing service creation", func() {
			svc := app.New(
				app.WithPersistQueueSize(2000),
				app.WithPersistWorkers(4),
			)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then the HTTP server should be creatable over it", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
		})
	})
}
