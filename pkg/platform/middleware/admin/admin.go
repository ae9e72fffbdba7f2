package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"invitegate/pkg/requestcontext"
)

// RequireAdminKey guards admin-only endpoints with a shared secret passed as
// the "key" query parameter. An empty expected key locks the endpoint.
func RequireAdminKey(expectedKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Query().Get("key")
			// Use constant-time comparison to prevent timing attacks
			if expectedKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expectedKey)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin key mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
