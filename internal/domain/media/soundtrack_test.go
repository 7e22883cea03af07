package media_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/lovequiz/internal/domain/media"
	"github.com/okian/lovequiz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// failingPlayer simulates blocked autoplay.
type failingPlayer struct {
	plays  int
	closed bool
}

func (f *failingPlayer) Play(context.Context, media.Track) error {
	f.plays++
	return errors.New("autoplay blocked")
}
func (f *failingPlayer) Pause(context.Context) error { return nil }
func (f *failingPlayer) Close() error {
	f.closed = true
	return errors.New("already gone")
}

func TestSoundtrack(t *testing.T) {
	_ = logger.Init()

	Convey("Given a soundtrack acquired on a client player", t, func() {
		ctx := context.Background()
		p := media.NewClientPlayer()
		s := media.Acquire(ctx, media.DefaultTrack(), p, logger.Get())

		Convey("Then it starts playing the configured track", func() {
			v := s.View()
			So(v.Playing, ShouldBeTrue)
			So(v.Loop, ShouldBeTrue)
			So(v.Volume, ShouldEqual, 0.3)
			So(p.Last(), ShouldEqual, media.CommandPlay)
		})

		Convey("When toggled twice", func() {
			first := s.Toggle(ctx)
			muted := s.View().Muted
			second := s.Toggle(ctx)

			Convey("Then it mutes and then resumes", func() {
				So(first, ShouldBeFalse)
				So(muted, ShouldBeTrue)
				So(second, ShouldBeTrue)
				So(s.View().Muted, ShouldBeFalse)
			})
		})

		Convey("When muted, Play does nothing", func() {
			s.Toggle(ctx)
			before := p.Commands()
			s.Play(ctx)
			So(p.Commands(), ShouldEqual, before)
			So(s.View().Playing, ShouldBeFalse)
		})

		Convey("When the client reports a failure", func() {
			s.ReportFailure(ctx, "NotAllowedError")

			Convey("Then it is recorded but nothing is returned", func() {
				So(s.View().Failed, ShouldBeTrue)
				So(s.View().Playing, ShouldBeFalse)
			})
		})

		Convey("When released", func() {
			So(s.Release(), ShouldBeNil)
			So(s.Release(), ShouldBeNil)

			Convey("Then the player is closed and further commands are ignored", func() {
				So(s.Released(), ShouldBeTrue)
				So(p.Last(), ShouldEqual, media.CommandClose)
				n := p.Commands()
				s.Play(ctx)
				s.Pause(ctx)
				So(s.Toggle(ctx), ShouldBeFalse)
				So(p.Commands(), ShouldEqual, n)
			})
		})
	})

	Convey("Given a player that always fails", t, func() {
		ctx := context.Background()
		p := &failingPlayer{}

		Convey("When acquired", func() {
			var s *media.Soundtrack
			So(func() { s = media.Acquire(ctx, media.DefaultTrack(), p, logger.Get()) }, ShouldNotPanic)

			Convey("Then the failure is swallowed", func() {
				So(p.plays, ShouldEqual, 1)
				So(s.View().Playing, ShouldBeFalse)
				So(s.View().Failed, ShouldBeTrue)
			})

			Convey("And a close error is surfaced on release", func() {
				err := s.Release()
				So(err, ShouldNotBeNil)
				So(p.closed, ShouldBeTrue)
			})
		})

		Convey("When acquired without a logger", func() {
			So(func() { media.Acquire(ctx, media.DefaultTrack(), p, nil) }, ShouldNotPanic)
		})
	})
}
