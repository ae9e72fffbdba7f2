// Package requesttime captures one "now" per request so every step of the
// invite flow (nonce consumption, grant timestamps, message expiry checks)
// agrees on the same instant.
package requesttime

import (
	"net/http"
	"time"

	"invitegate/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
