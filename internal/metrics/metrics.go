// Package metrics provides Prometheus metrics for deck-insight.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckinsight_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deckinsight_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Deck Metrics
	DecksValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckinsight_decks_validated_total",
			Help: "Total number of decklists validated",
		},
		[]string{"valid"},
	)

	// Collaborator Metrics
	SourceFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckinsight_meta_fetch_failures_total",
			Help: "Meta listing fetches that failed, by source",
		},
		[]string{"source"},
	)

	ProfileFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckinsight_profile_fetch_failures_total",
			Help: "Profile fetches that failed, by source",
		},
		[]string{"source"},
	)

	// Tool Metrics
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckinsight_tool_calls_total",
			Help: "Tool invocations by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deckinsight_active_sessions",
			Help: "Number of sessions currently held in the registry",
		},
	)
)

// RecordValidation counts one validated decklist.
func RecordValidation(valid bool) {
	if valid {
		DecksValidated.WithLabelValues("true").Inc()
		return
	}
	DecksValidated.WithLabelValues("false").Inc()
}
