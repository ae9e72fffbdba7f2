package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the invite flow.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Grants          *prometheus.CounterVec
	NoncesIssued    prometheus.Counter
	EventsFailed    prometheus.Counter
	RequestDuration prometheus.Histogram
}

// New registers the invite metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "invitegate_invite_requests_total",
			Help: "Invite requests by terminal outcome (granted, existing, or failure reason)",
		}, []string{"outcome"}),
		Grants: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "invitegate_grants_total",
			Help: "Invite codes returned, by chain and whether newly minted",
		}, []string{"chain_id", "fresh"}),
		NoncesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "invitegate_nonces_issued_total",
			Help: "Challenge nonces handed out",
		}),
		EventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "invitegate_grant_events_failed_total",
			Help: "Grant events that could not be published",
		}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "invitegate_invite_request_duration_seconds",
			Help:    "End-to-end duration of invite requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

func (m *Metrics) IncRequest(outcome string) {
	m.Requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncGrant(chainID string, fresh bool) {
	label := "false"
	if fresh {
		label = "true"
	}
	m.Grants.WithLabelValues(chainID, label).Inc()
}

func (m *Metrics) IncNonceIssued() {
	m.NoncesIssued.Inc()
}

func (m *Metrics) IncEventFailed() {
	m.EventsFailed.Inc()
}

func (m *Metrics) ObserveRequestDuration(seconds float64) {
	m.RequestDuration.Observe(seconds)
}
