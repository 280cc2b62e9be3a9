// Package metrics declares the process-wide Prometheus collectors.
// Labels stay low-cardinality: handler names, job names and fixed result sets only.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qazobot"

var (
	// Updates counts inbound Telegram updates by kind (message, callback, other).
	Updates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound Telegram updates by kind",
		},
		[]string{"kind"},
	)

	// HandlerDuration observes routed handler latency.
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Handler latency in seconds by handler and outcome",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"handler", "outcome"},
	)

	// MessagesSent counts outbound Bot API calls by action and result.
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Outbound Bot API calls by action and result",
		},
		[]string{"action", "result"},
	)

	// FanoutDeliveries counts per-recipient deliveries of broadcasts and reminders.
	FanoutDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_deliveries_total",
			Help:      "Per-recipient fan-out deliveries by job and result",
		},
		[]string{"job", "result"},
	)

	// SchedulerRuns counts scheduled job executions by status (ok, fail, skip).
	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_runs_total",
			Help:      "Scheduled job runs by job and status",
		},
		[]string{"job", "status"},
	)

	// RateLimited counts updates dropped by the per-user rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Updates dropped by the rate limiter",
		},
	)

	// Panics counts handler panics caught by the recover middleware.
	Panics = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Recovered handler panics",
		},
	)
)

// Result maps an error to the "ok"/"fail" label value.
func Result(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}
