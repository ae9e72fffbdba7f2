package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invitegate_ratelimit_rejected_total",
		Help: "Requests rejected by the per-IP limiter",
	}, []string{"class"})
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invitegate_ratelimit_store_errors_total",
		Help: "Limiter lookups that failed and let the request through",
	}, []string{"class"})
)
