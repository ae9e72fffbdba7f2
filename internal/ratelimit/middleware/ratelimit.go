package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"invitegate/internal/ratelimit/metrics"
	"invitegate/internal/ratelimit/models"
	"invitegate/pkg/platform/httputil"
	"invitegate/pkg/requestcontext"
)

// BucketStore counts requests per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	store  BucketStore
	limit  int
	window time.Duration
	logger *slog.Logger
}

// New returns a per-IP limiter allowing limit requests per window. A limit
// of zero or less disables it.
func New(store BucketStore, limit int, window time.Duration, logger *slog.Logger) *Middleware {
	m := &Middleware{store: store, limit: limit, window: window, logger: logger}
	if m.disabled() {
		logger.Info("rate limiting disabled")
	}
	return m
}

func (m *Middleware) disabled() bool {
	return m.limit <= 0 || m.store == nil
}

// RateLimit limits requests by the client IP found in the request context.
// Store failures let the request through.
func (m *Middleware) RateLimit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			result, err := m.store.Allow(ctx, class+":ip:"+ip, m.limit, m.window)
			if err != nil {
				metrics.StoreErrorsTotal.WithLabelValues(class).Inc()
				m.logger.ErrorContext(ctx, "failed to check IP rate limit",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				metrics.RejectedTotal.WithLabelValues(class).Inc()
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		Error: "Too many requests. Try again later.",
		Code:  "rate_limited",
	})
}
