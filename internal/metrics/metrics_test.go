package metrics_test

import (
	"testing"
	"time"

	"roster-sync/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func count(reg *prometheus.Registry, name string) int {
	n, err := testutil.GatherAndCount(reg, name)
	if err != nil {
		return -1
	}
	return n
}

func gauge(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestMetrics(t *testing.T) {
	Convey("Given metrics on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		Convey("When a run completes", func() {
			m.RunStarted()
			m.RunFinished(metrics.RunCompleted, 3*time.Second)

			Convey("Then the completed counter and duration histogram move", func() {
				So(count(reg, "roster_sync_runs_total"), ShouldEqual, 1)
				So(count(reg, "roster_sync_run_duration_seconds"), ShouldEqual, 1)
				So(gauge(reg, "roster_sync_last_completed_run_timestamp_seconds"), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When accounts and Riot requests are recorded", func() {
			m.AccountSynced("synced", "")
			m.AccountSynced("failed", "transient")
			m.AccountSynced("failed", "transient")
			m.RiotRequest("account", 200, time.Millisecond)
			m.RiotRequest("summoner", 0, time.Millisecond)

			Convey("Then each label set is a separate series", func() {
				So(count(reg, "roster_sync_accounts_total"), ShouldEqual, 2)
				So(count(reg, "roster_sync_riot_requests_total"), ShouldEqual, 2)
			})
		})

		Convey("When a run is canceled", func() {
			m.RunStarted()
			m.RunFinished(metrics.RunCanceled, time.Second)

			Convey("Then the last completed timestamp stays unset", func() {
				So(gauge(reg, "roster_sync_last_completed_run_timestamp_seconds"), ShouldEqual, 0)
			})
		})

		Convey("When a run collides", func() {
			m.RunCollided()
			m.RunCollided()

			Convey("Then only the collided series exists", func() {
				So(count(reg, "roster_sync_runs_total"), ShouldEqual, 1)
			})
		})
	})
}
