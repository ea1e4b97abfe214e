// Package metrics holds the Prometheus collectors for watch runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "politics_watch_runs_total",
			Help: "Watch runs by outcome",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "politics_watch_run_duration_seconds",
			Help:    "Watch run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// ArticleFetchesTotal counts article fetches charged to the budget, by pass.
	ArticleFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "politics_watch_article_fetches_total",
			Help: "Article fetches counted against the per-run budget",
		},
		[]string{"pass"},
	)

	HitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "politics_watch_hits_total",
			Help: "New hits recorded, by pass",
		},
		[]string{"pass"},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "politics_watch_alerts_total",
			Help: "Alert deliveries by outcome",
		},
		[]string{"status"},
	)

	BudgetExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "politics_watch_budget_exhausted_total",
			Help: "Runs in which the article fetch budget refused a candidate",
		},
	)
)

const (
	PassTargeted = "targeted"
	PassBackstop = "backstop"
)

func RecordRun(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
}

func RecordArticleFetch(pass string) {
	ArticleFetchesTotal.WithLabelValues(pass).Inc()
}

func RecordHit(pass string) {
	HitsTotal.WithLabelValues(pass).Inc()
}

// RecordAlert counts one delivery attempt. Status is "sent", "skipped" or "failed".
func RecordAlert(sent bool, err error) {
	status := "sent"
	switch {
	case err != nil:
		status = "failed"
	case !sent:
		status = "skipped"
	}
	AlertsTotal.WithLabelValues(status).Inc()
}

func RecordBudgetExhausted() {
	BudgetExhaustedTotal.Inc()
}
