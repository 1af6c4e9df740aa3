package api

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"roster-sync/internal/config"
	"roster-sync/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const testKey = "RGAPI-test"

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *RiotClient {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })

	cfg := &config.Config{
		RiotAPIKey:            testKey,
		RiotRegionalURL:       "http://americas.test",
		RiotPlatformURL:       "http://na1.test",
		RiotTimeout:           2 * time.Second,
		RiotRequestsPerSecond: 1000,
		RiotBurst:             1000,
		RiotBreakerFailures:   3,
		RiotBreakerTimeout:    time.Minute,
	}
	c := NewRiotClient(cfg, metrics.New(prometheus.NewRegistry()), zerolog.Nop())
	c.client.Dial = func(addr string) (net.Conn, error) {
		return ln.Dial()
	}
	return c
}

func TestRiotClientRequests(t *testing.T) {
	Convey("Given a Riot API that checks the token header", t, func() {
		var lastHost, lastPath atomic.Value
		c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Request.Header.Peek("X-Riot-Token")) != testKey {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}
			lastHost.Store(string(ctx.Host()))
			lastPath.Store(string(ctx.Path()))
			ctx.Response.Header.Set("X-App-Rate-Limit", "20:1,100:120")
			ctx.Response.Header.Set("X-App-Rate-Limit-Count", "1:1,1:120")
			ctx.SetContentType("application/json")

			switch string(ctx.Path()) {
			case "/riot/account/v1/accounts/by-puuid/P1":
				ctx.SetBodyString(`{"puuid":"P1","gameName":"bar","tagLine":"NA1"}`)
			case "/riot/account/v1/accounts/by-puuid/P2":
				ctx.SetBodyString(`{"puuid":"P2"}`)
			case "/riot/account/v1/accounts/by-puuid/P3":
				ctx.SetBodyString(`null`)
			case "/lol/summoner/v4/summoners/by-puuid/P1":
				ctx.SetBodyString(`{"id":"S1","puuid":"P1","profileIconId":4568,"summonerLevel":310}`)
			case "/lol/league/v4/entries/by-summoner/S1":
				ctx.SetBodyString(`[
					{"queueType":"RANKED_FLEX_SR","tier":"SILVER","rank":"I","leaguePoints":5,"wins":3,"losses":4},
					{"queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"II","leaguePoints":12,"wins":40,"losses":38}
				]`)
			default:
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				ctx.SetBodyString(`{"status":{"message":"Data not found","status_code":404}}`)
			}
		})
		ctx := context.Background()

		Convey("When resolving an account identity", func() {
			account, err := c.AccountByPUUID(ctx, "P1")

			Convey("Then the regional host is used and the body is decoded", func() {
				So(err, ShouldBeNil)
				So(account.GameName, ShouldEqual, "bar")
				So(account.TagLine, ShouldEqual, "NA1")
				So(lastHost.Load(), ShouldEqual, "americas.test")
			})

			Convey("And the rate-limit headers are tracked", func() {
				info := c.GetRateLimitInfo()
				So(info.AppLimit, ShouldEqual, "20:1,100:120")
				So(info.AppCount, ShouldEqual, "1:1,1:120")
				So(info.UpdatedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the account has never set a Riot ID", func() {
			_, err := c.AccountByPUUID(ctx, "P2")
			_, nullErr := c.AccountByPUUID(ctx, "P3")

			Convey("Then the lookup fails as transient instead of returning a blank identity", func() {
				So(errors.Is(err, ErrTransient), ShouldBeTrue)
				So(errors.Is(err, ErrMissingRiotID), ShouldBeTrue)
				So(errors.Is(nullErr, ErrMissingRiotID), ShouldBeTrue)
			})
		})

		Convey("When resolving the summoner and its league entries", func() {
			summoner, err := c.SummonerByPUUID(ctx, "P1")
			So(err, ShouldBeNil)
			So(lastHost.Load(), ShouldEqual, "na1.test")

			entries, err := c.LeagueEntriesBySummoner(ctx, summoner.ID)
			So(err, ShouldBeNil)

			Convey("Then the solo queue entry is picked out", func() {
				So(summoner.ProfileIconID, ShouldEqual, int64(4568))
				So(entries, ShouldHaveLength, 2)
				solo, ok := SoloQueueEntry(entries)
				So(ok, ShouldBeTrue)
				So(solo.Tier, ShouldEqual, "GOLD")
				So(solo.Rank, ShouldEqual, "II")
				So(solo.LeaguePoints, ShouldEqual, 12)
				So(lastPath.Load(), ShouldEqual, "/lol/league/v4/entries/by-summoner/S1")
			})
		})

		Convey("When the account does not exist", func() {
			_, err := c.AccountByPUUID(ctx, "missing")

			Convey("Then the error classifies as not found", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, ErrTransient), ShouldBeFalse)
				var apiErr *APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.StatusCode, ShouldEqual, 404)
				So(apiErr.Endpoint, ShouldEqual, EndpointAccount)
			})
		})
	})
}

func TestRiotClientErrorClassification(t *testing.T) {
	Convey("Given a Riot API that answers with a fixed status", t, func() {
		var status atomic.Int32
		var hits atomic.Int32
		c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
			hits.Add(1)
			code := int(status.Load())
			if code == fasthttp.StatusTooManyRequests {
				ctx.Response.Header.Set("Retry-After", "7")
			}
			ctx.SetStatusCode(code)
			if code == fasthttp.StatusOK {
				ctx.SetBodyString(`{"puuid":`)
			}
		})
		ctx := context.Background()

		Convey("403 is forbidden", func() {
			status.Store(fasthttp.StatusForbidden)
			_, err := c.AccountByPUUID(ctx, "P1")
			So(errors.Is(err, ErrForbidden), ShouldBeTrue)
		})

		Convey("401 is forbidden too", func() {
			status.Store(fasthttp.StatusUnauthorized)
			_, err := c.SummonerByPUUID(ctx, "P1")
			So(errors.Is(err, ErrForbidden), ShouldBeTrue)
		})

		Convey("500 is transient", func() {
			status.Store(fasthttp.StatusInternalServerError)
			_, err := c.SummonerByPUUID(ctx, "P1")
			So(errors.Is(err, ErrTransient), ShouldBeTrue)
		})

		Convey("429 is transient and records Retry-After", func() {
			status.Store(fasthttp.StatusTooManyRequests)
			_, err := c.LeagueEntriesBySummoner(ctx, "S1")
			So(errors.Is(err, ErrTransient), ShouldBeTrue)
			var apiErr *APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.RetryAfter, ShouldEqual, 7*time.Second)
			So(c.GetRateLimitInfo().RetryAfter, ShouldEqual, 7)
		})

		Convey("A malformed body is transient", func() {
			status.Store(fasthttp.StatusOK)
			_, err := c.AccountByPUUID(ctx, "P1")
			So(errors.Is(err, ErrTransient), ShouldBeTrue)
		})

		Convey("Repeated transient failures open the breaker", func() {
			status.Store(fasthttp.StatusServiceUnavailable)
			for i := 0; i < 3; i++ {
				_, err := c.SummonerByPUUID(ctx, "P1")
				So(errors.Is(err, ErrTransient), ShouldBeTrue)
			}
			So(hits.Load(), ShouldEqual, int32(3))

			_, err := c.SummonerByPUUID(ctx, "P1")
			So(errors.Is(err, ErrTransient), ShouldBeTrue)
			So(hits.Load(), ShouldEqual, int32(3))
		})

		Convey("Not-found answers never open the breaker", func() {
			status.Store(fasthttp.StatusNotFound)
			for i := 0; i < 5; i++ {
				_, err := c.AccountByPUUID(ctx, "P1")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			}
			So(hits.Load(), ShouldEqual, int32(5))
		})

		Convey("A cancelled context fails as transient", func() {
			status.Store(fasthttp.StatusOK)
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := c.AccountByPUUID(cctx, "P1")
			So(errors.Is(err, ErrTransient), ShouldBeTrue)
		})
	})
}

func TestSoloQueueEntry(t *testing.T) {
	Convey("SoloQueueEntry ignores other queues", t, func() {
		_, ok := SoloQueueEntry([]LeagueEntry{{QueueType: "RANKED_FLEX_SR"}})
		So(ok, ShouldBeFalse)
		_, ok = SoloQueueEntry(nil)
		So(ok, ShouldBeFalse)
	})
}

func TestTruncate(t *testing.T) {
	Convey("truncate keeps whole runes", t, func() {
		So(truncate("abc", 5), ShouldEqual, "abc")
		So(truncate("abcdef", 3), ShouldEqual, "abc")
		// "é" is two bytes; cutting inside it drops the rune
		So(truncate("aé", 2), ShouldEqual, "a")
		So(utf8.ValidString(truncate(strings.Repeat("日本", 100), 256)), ShouldBeTrue)
	})
}
