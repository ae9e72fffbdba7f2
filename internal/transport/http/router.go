// Package httptransport assembles the HTTP surface: shared middleware,
// operational endpoints, and the invite routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invitegate/internal/platform/telemetry"
	"invitegate/pkg/platform/httputil"
	"invitegate/pkg/platform/middleware/metadata"
	"invitegate/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout = 60 * time.Second
	readyTimeout   = 2 * time.Second
)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

// RouteRegistrar mounts a feature's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// RouterDeps are the collaborators of NewRouter.
type RouterDeps struct {
	Logger      *slog.Logger
	ServiceName string
	Gatherer    prometheus.Gatherer
	Checks      map[string]ReadinessCheck
	Routes      []RouteRegistrar

	// TrustForwardedFor lets proxy headers name the client IP.
	TrustForwardedFor bool
}

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(metadata.ClientMetadataWithPolicy(metadata.ClientIPPolicy{TrustForwardedFor: deps.TrustForwardedFor}))
	r.Use(requesttime.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(accessLog(deps.Logger))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", readyHandler(deps.Checks, deps.Logger))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		for _, routes := range deps.Routes {
			routes.Register(r)
		}
	})

	if deps.ServiceName == "" {
		return r
	}
	return telemetry.Middleware(deps.ServiceName)(r)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readyHandler(checks map[string]ReadinessCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"check", name,
					"error", err,
				)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		httputil.WriteJSON(w, status, results)
	}
}
