package lock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"roster-sync/internal/config"
	"roster-sync/internal/lock"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

// Needs a disposable Redis, e.g. REDIS_TEST_URL=redis://localhost:6379/15.
func TestRedisGuard(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	Convey("Given two replicas sharing one lease key", t, func() {
		ctx := context.Background()
		client, err := lock.NewClient(&config.Config{RedisURL: url})
		So(err, ShouldBeNil)
		key := "roster-sync:test:" + t.Name()
		client.Del(ctx, key)
		Reset(func() {
			client.Del(ctx, key)
			client.Close()
		})

		a := lock.NewRedisGuard(client, key, time.Minute, zerolog.Nop())
		b := lock.NewRedisGuard(client, key, time.Minute, zerolog.Nop())

		Convey("Only the first one is admitted", func() {
			ok, err := a.TryAcquire(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, err = b.TryAcquire(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			Convey("And the loser's release does not free the lease", func() {
				So(b.Release(ctx), ShouldBeNil)
				ok, _ := b.TryAcquire(ctx)
				So(ok, ShouldBeFalse)
			})

			Convey("And the holder's release does", func() {
				So(a.Release(ctx), ShouldBeNil)
				ok, _ := b.TryAcquire(ctx)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("An expired lease can be taken over", func() {
			short := lock.NewRedisGuard(client, key, 50*time.Millisecond, zerolog.Nop())
			ok, _ := short.TryAcquire(ctx)
			So(ok, ShouldBeTrue)
			time.Sleep(100 * time.Millisecond)

			ok, _ = b.TryAcquire(ctx)
			So(ok, ShouldBeTrue)
			So(short.Release(ctx), ShouldBeNil)

			ok, _ = a.TryAcquire(ctx)
			So(ok, ShouldBeFalse)
		})
	})
}
