// Package metrics provides Prometheus collectors for the sync engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "roster_sync"

// Run results.
const (
	RunCompleted = "completed"
	RunCanceled  = "canceled"
	RunCollided  = "collided"
	RunFailed    = "failed"
)

// Metrics groups every collector the sync engine updates.
type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runInProgress prometheus.Gauge
	accounts      *prometheus.CounterVec
	riotRequests  *prometheus.CounterVec
	riotLatency   *prometheus.HistogramVec
	rankChanges   *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Sync run attempts by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed sync runs.",
			Buckets:   []float64{1, 10, 60, 300, 600, 1200, 1800, 3600, 7200},
		}),
		runInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a sync run is active.",
		}),
		accounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_total",
			Help:      "Per-account sync outcomes.",
		}, []string{"status", "reason"}),
		riotRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "riot_requests_total",
			Help:      "Riot API requests by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		riotLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "riot_request_duration_seconds",
			Help:      "Riot API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		rankChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_changes_total",
			Help:      "Snapshot-to-snapshot standing changes.",
		}, []string{"direction"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_completed_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}

	reg.MustRegister(
		m.runs,
		m.runDuration,
		m.runInProgress,
		m.accounts,
		m.riotRequests,
		m.riotLatency,
		m.rankChanges,
		m.lastSuccess,
	)
	return m
}

func (m *Metrics) RunStarted() {
	m.runInProgress.Set(1)
}

func (m *Metrics) RunFinished(result string, d time.Duration) {
	m.runInProgress.Set(0)
	m.runs.WithLabelValues(result).Inc()
	if result == RunCompleted {
		m.runDuration.Observe(d.Seconds())
		m.lastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) RunCollided() {
	m.runs.WithLabelValues(RunCollided).Inc()
}

func (m *Metrics) AccountSynced(status, reason string) {
	m.accounts.WithLabelValues(status, reason).Inc()
}

// RiotRequest records one call; code 0 means no HTTP response was received.
func (m *Metrics) RiotRequest(endpoint string, code int, d time.Duration) {
	m.riotRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	m.riotLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) RankChanged(direction string) {
	m.rankChanges.WithLabelValues(direction).Inc()
}

// NewRegistry returns a registry carrying the Go and process collectors next
// to the sync metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
