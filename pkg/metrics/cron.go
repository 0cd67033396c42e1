package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics instruments the cache-sync jobs. Every series is labelled by
// job name; runs are split by outcome.
type CronJobMetrics struct {
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	synced      *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

// Buckets span a small shop's catalogue (milliseconds) up to a slow full
// resync of several thousand orders.
var cacheSyncBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cache_sync_duration_seconds",
			Help:    "Wall time of one cache-sync job run.",
			Buckets: cacheSyncBuckets,
		}, []string{"job"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_sync_runs_total",
			Help: "Cache-sync job runs by outcome (success or failure).",
		}, []string{"job", "outcome"}),
		synced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_sync_records_total",
			Help: "Records copied from the database into the cache.",
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cache_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.runs, m.synced, m.lastSuccess)
	return m
}

func (c *CronJobMetrics) enabled() bool {
	return c != nil && c.runs != nil
}

func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a successful run and stamps the last-success gauge.
func (c *CronJobMetrics) IncSuccess(job string) {
	if !c.enabled() {
		return
	}
	job = normalizeLabel(job)
	c.runs.WithLabelValues(job, "success").Inc()
	c.lastSuccess.WithLabelValues(job).SetToCurrentTime()
}

func (c *CronJobMetrics) IncFailure(job string) {
	if !c.enabled() {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), "failure").Inc()
}

// AddSynced ignores non-positive counts.
func (c *CronJobMetrics) AddSynced(job string, n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.synced.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
