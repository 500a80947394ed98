// Package metrics exposes Prometheus instrumentation for the bot's
// actions and an optional HTTP status server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsAttempted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growthbot_actions_attempted_total",
		Help: "Actions that entered the gate chain, by kind.",
	}, []string{"action"})

	actionsPerformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growthbot_actions_performed_total",
		Help: "Actions performed successfully, by kind.",
	}, []string{"action"})

	actionsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growthbot_actions_denied_total",
		Help: "Actions denied by a gate, by kind and reason.",
	}, []string{"action", "reason"})

	searchCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthbot_search_calls_total",
		Help: "Search API calls issued.",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "growthbot_run_duration_seconds",
		Help:    "Wall-clock duration of full engagement runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

func ActionAttempted(action string) { actionsAttempted.WithLabelValues(action).Inc() }

func ActionPerformed(action string) { actionsPerformed.WithLabelValues(action).Inc() }

func ActionDenied(action, reason string) { actionsDenied.WithLabelValues(action, reason).Inc() }

func SearchCall() { searchCalls.Inc() }

func ObserveRunDuration(seconds float64) { runDuration.Observe(seconds) }
