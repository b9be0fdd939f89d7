// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Track picking:
//   - alarm_pick_attempts_total{strategy,outcome}: one per catalog attempt
//   - alarm_picks_total{strategy}: final source of each returned track
//     ("hard_fallback" when every strategy came up empty)
//   - alarm_pick_duration_seconds: wall time of a full cascade
//
// Request flow:
//   - alarm_intent_source_total{source}
//   - alarm_playback_total{result}
//   - alarm_circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PickAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alarm_pick_attempts_total",
			Help: "Catalog attempts made by the track picker",
		},
		[]string{"strategy", "outcome"},
	)

	Picks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alarm_picks_total",
			Help: "Tracks returned by the picker, by winning strategy",
		},
		[]string{"strategy"},
	)

	PickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alarm_pick_duration_seconds",
			Help:    "Duration of a full pick cascade",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	IntentSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alarm_intent_source_total",
			Help: "Where each request's listening intent came from",
		},
		[]string{"source"},
	)

	Playback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alarm_playback_total",
			Help: "Playback commands by result",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alarm_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
