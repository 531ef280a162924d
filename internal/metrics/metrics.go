// Package metrics provides Prometheus instrumentation for the matching service.
// Counters cover swipe and match throughput; histograms cover matchmake latency
// and candidate batch sizes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SwipesTotal counts recorded swipes, labeled by direction and target type.
	SwipesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_swipes_total",
		Help: "Total number of swipes recorded",
	}, []string{"direction", "target_type"})

	// RequestsTotal counts buyer yes swipes on listings (one-sided requests).
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_requests_total",
		Help: "Total number of buyer requests on listings",
	})

	// MatchesTotal counts provisioning outcomes, labeled by outcome:
	// "created" for a new deal room, "existing" when the triple was already matched.
	MatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_matches_total",
		Help: "Total number of mutual matches resolved",
	}, []string{"outcome"})

	// ProvisioningFailures counts matches left without a complete deal room.
	ProvisioningFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_provisioning_failures_total",
		Help: "Total number of deal room provisioning failures after a match was stored",
	})

	// GateRejections counts yes swipes refused by the verification gate, labeled by role.
	GateRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_gate_rejections_total",
		Help: "Total number of yes swipes rejected by the verification gate",
	}, []string{"role"})

	// MatchmakeDuration records matchmake latency in seconds.
	MatchmakeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_matchmake_duration_seconds",
		Help:    "Matchmake request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// MatchmakeCandidates records how many listings each matchmake call scored.
	MatchmakeCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_matchmake_candidates",
		Help:    "Number of candidate listings scored per matchmake call",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)

func init() {
	prometheus.MustRegister(
		SwipesTotal,
		RequestsTotal,
		MatchesTotal,
		ProvisioningFailures,
		GateRejections,
		MatchmakeDuration,
		MatchmakeCandidates,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
