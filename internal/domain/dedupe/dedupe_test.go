package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/lovequiz/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a gesture is new", func() {
			seen := d.SeenAndRecord(ctx, dedupe.Key("s1", "g1"))

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same gesture repeats", func() {
			d.SeenAndRecord(ctx, dedupe.Key("s1", "g1"))
			seen := d.SeenAndRecord(ctx, dedupe.Key("s1", "g1"))

			Convey("Then it is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same gesture id comes from another session", func() {
			d.SeenAndRecord(ctx, dedupe.Key("s1", "g1"))
			seen := d.SeenAndRecord(ctx, dedupe.Key("s2", "g1"))

			Convey("Then it is independent", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When more keys than capacity are recorded", func() {
			for i := 0; i < 5; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then the oldest are evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "k3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "k0"), ShouldBeFalse)
			})
		})

		Convey("When the ring wraps more than once", func() {
			for i := 0; i < 9; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("w%d", i))
			}

			Convey("Then only the newest keys remain", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "w8"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "w5"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}

		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "k0"), ShouldBeTrue)
	})

	Convey("Given concurrent callers racing on one key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "tap") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(fresh, ShouldEqual, 1)
		})
	})
}
