// Package metrics exposes Prometheus counters for synthesis and batch runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SynthesisAttempts counts transport calls.
	// Labels: transport (http/cli), status (success/error/empty)
	SynthesisAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxcue_synthesis_attempts_total",
			Help: "Total number of synthesis transport calls by transport and status",
		},
		[]string{"transport", "status"},
	)

	// CredentialRefreshes counts refresh decisions.
	// Labels: result (refreshed/throttled/error)
	CredentialRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxcue_credential_refreshes_total",
			Help: "Total number of credential refresh decisions by result",
		},
		[]string{"result"},
	)

	// UnitsTotal counts batch output units.
	// Labels: kind (whole/line/caption), status (ok/failed/skipped)
	UnitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxcue_units_total",
			Help: "Total number of batch output units by kind and status",
		},
		[]string{"kind", "status"},
	)

	// CacheLookups counts artifact cache lookups by result (hit/miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxcue_cache_lookups_total",
			Help: "Total number of artifact cache lookups by result",
		},
		[]string{"result"},
	)

	// CuesPerCaption observes how many cues each caption file holds.
	CuesPerCaption = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voxcue_caption_cues",
			Help:    "Number of cues per written caption file",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// SynthesisDuration observes the wall time of a full retry-engine call.
	SynthesisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voxcue_synthesis_duration_seconds",
			Help:    "Synthesis duration in seconds by outcome",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)
)

// RecordAttempt records one transport call.
func RecordAttempt(transport, status string) {
	SynthesisAttempts.WithLabelValues(transport, status).Inc()
}

// RecordRefresh records a credential refresh decision.
func RecordRefresh(result string) {
	CredentialRefreshes.WithLabelValues(result).Inc()
}

// RecordUnit records a finished batch unit.
func RecordUnit(kind, status string) {
	UnitsTotal.WithLabelValues(kind, status).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCaption records a written caption file.
func RecordCaption(cues int) {
	CuesPerCaption.Observe(float64(cues))
}

// RecordSynthesis records the duration of a synthesis call.
func RecordSynthesis(success bool, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	SynthesisDuration.WithLabelValues(outcome).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
