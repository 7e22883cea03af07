package playthrough_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/lovequiz/internal/adapters/http/api"
	service "github.com/okian/lovequiz/internal/app"
	"github.com/okian/lovequiz/internal/playthrough"
	"github.com/okian/lovequiz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Given a quiz service behind a test server", t, func() {
		So(logger.Init(), ShouldBeNil)

		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		ts := httptest.NewServer(api.NewServer(svc, svc).Handler())
		defer ts.Close()

		cfg := &playthrough.Config{
			BaseURL:  ts.URL,
			Name:     playthrough.DefaultName,
			Partner:  playthrough.DefaultPartner,
			Score:    250,
			Declines: 2,
			Sessions: 4,
			Workers:  2,
			Timeout:  5 * time.Second,
		}

		Convey("When every session is played", func() {
			stats, err := playthrough.Run(ctx, cfg)

			Convey("Then all of them complete", func() {
				So(err, ShouldBeNil)
				So(stats.Completed, ShouldEqual, 4)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Declines, ShouldEqual, 8)
				So(stats.Duplicates, ShouldEqual, 8)
				So(svc.GetStats()["sessions"], ShouldEqual, 0)
			})
		})

		Convey("When the partner is not on the list", func() {
			cfg.Partner = "budi"
			cfg.Sessions = 1
			stats, err := playthrough.Run(ctx, cfg)

			Convey("Then the run fails with the API's answer", func() {
				var se *playthrough.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Status, ShouldEqual, 422)
				So(se.Body.Code, ShouldEqual, "not_recognized")
				So(stats.Failed, ShouldEqual, 1)
			})

			Convey("Then the failed session is still ended", func() {
				So(svc.GetStats()["sessions"], ShouldEqual, 0)
			})
		})

		Convey("When the service is unreachable", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := playthrough.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
