package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/lovequiz/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with a fake clock", t, func() {
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		var evicted []string
		s := repository.NewMemoryStore[string](
			repository.WithTTL[string](time.Minute),
			repository.WithMaxEntries[string](2),
			repository.WithClock[string](clock.Now),
			repository.WithOnEvict[string](func(_ context.Context, id string, _ string) {
				evicted = append(evicted, id)
			}),
		)
		defer s.Close()

		Convey("When an entry is put", func() {
			So(s.Put(ctx, "a", "alpha"), ShouldBeNil)

			Convey("Then it can be read back", func() {
				v, err := s.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "alpha")
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then the same id cannot be put twice", func() {
				So(errors.Is(s.Put(ctx, "a", "again"), repository.ErrExists), ShouldBeTrue)
			})
		})

		Convey("When the store is full", func() {
			So(s.Put(ctx, "a", "1"), ShouldBeNil)
			So(s.Put(ctx, "b", "2"), ShouldBeNil)

			So(errors.Is(s.Put(ctx, "c", "3"), repository.ErrFull), ShouldBeTrue)
		})

		Convey("When an id is unknown", func() {
			_, err := s.Get(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When entries go idle past the TTL", func() {
			So(s.Put(ctx, "idle", "1"), ShouldBeNil)
			So(s.Put(ctx, "busy", "2"), ShouldBeNil)

			clock.Advance(40 * time.Second)
			_, _ = s.Get(ctx, "busy")
			clock.Advance(40 * time.Second)

			Convey("Then a read of the idle entry misses before the sweep", func() {
				_, err := s.Get(ctx, "idle")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then the sweep evicts only the idle entry and reports it", func() {
				So(s.Sweep(ctx), ShouldEqual, 1)
				So(evicted, ShouldResemble, []string{"idle"})
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then putting the idle id again replaces it after evicting the old value", func() {
				So(s.Put(ctx, "idle", "fresh"), ShouldBeNil)
				So(evicted, ShouldResemble, []string{"idle"})
				v, err := s.Get(ctx, "idle")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "fresh")
				So(s.Count(ctx), ShouldEqual, 2)
			})

			Convey("Then the idle entry does not hold a slot at capacity", func() {
				So(s.Put(ctx, "new", "3"), ShouldBeNil)
				So(evicted, ShouldResemble, []string{"idle"})
				So(s.Count(ctx), ShouldEqual, 2)
				So(errors.Is(s.Put(ctx, "busy", "again"), repository.ErrExists), ShouldBeTrue)
			})
		})

		Convey("When an entry is deleted", func() {
			So(s.Put(ctx, "a", "alpha"), ShouldBeNil)
			v, ok := s.Delete(ctx, "a")
			_, again := s.Delete(ctx, "a")

			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "alpha")
			So(again, ShouldBeFalse)
			So(s.Count(ctx), ShouldEqual, 0)
		})
	})

	Convey("Given a started store", t, func() {
		s := repository.NewMemoryStore[int](
			repository.WithTTL[int](time.Millisecond),
			repository.WithSweepInterval[int](5*time.Millisecond),
		)
		s.Start(ctx)

		for i := 0; i < 3; i++ {
			So(s.Put(ctx, fmt.Sprint(i), i), ShouldBeNil)
		}

		Convey("Then the background sweeper empties it", func() {
			deadline := time.Now().Add(2 * time.Second)
			for s.Count(ctx) > 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(s.Count(ctx), ShouldEqual, 0)
			So(s.Close(), ShouldBeEmpty)
		})
	})

	Convey("Given a closed store", t, func() {
		s := repository.NewMemoryStore[int]()
		So(s.Put(ctx, "x", 1), ShouldBeNil)

		live := s.Close()

		Convey("Then the live entries are handed back and puts are refused", func() {
			So(live, ShouldResemble, []int{1})
			So(errors.Is(s.Put(ctx, "y", 2), repository.ErrClosed), ShouldBeTrue)
			So(s.Close(), ShouldBeNil)
		})
	})
}
