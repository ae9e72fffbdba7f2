package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for external calls.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

var externalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "invitegate_external_call_duration_seconds",
	Help:    "Latency of outbound calls to the ownership oracle and the invite issuer",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
}, []string{"target", "outcome"})

// ObserveExternalCall records the latency of one outbound call since start.
func ObserveExternalCall(target, outcome string, start time.Time) {
	externalCallDuration.WithLabelValues(target, outcome).Observe(time.Since(start).Seconds())
}
