package metadata

import (
	"net"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"invitegate/pkg/requestcontext"
)

// ClientIPPolicy controls which request attributes identify the client.
//
// TrustForwardedFor must be explicitly enabled for X-Forwarded-For and
// X-Real-IP to be considered. Enable it only behind a proxy that overwrites
// those headers; otherwise any caller can choose its own address.
type ClientIPPolicy struct {
	TrustForwardedFor bool
}

// ClientMetadata extracts client IP address, User-Agent and the chi request ID
// from the request and adds them to the context for handlers and services.
// The client IP is taken from RemoteAddr only. Apply it after chi's RequestID
// middleware.
func ClientMetadata(next http.Handler) http.Handler {
	return ClientMetadataWithPolicy(ClientIPPolicy{})(next)
}

// ClientMetadataWithPolicy is ClientMetadata resolving the client IP under policy.
func ClientMetadataWithPolicy(policy ClientIPPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFromRequestWithPolicy(r, policy)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			if reqID := chimw.GetReqID(ctx); reqID != "" {
				ctx = requestcontext.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest returns the peer address of the connection.
func ClientIPFromRequest(r *http.Request) string {
	return ClientIPFromRequestWithPolicy(r, ClientIPPolicy{})
}

// ClientIPFromRequestWithPolicy resolves the client IP, consulting proxy
// headers only when the policy trusts them.
func ClientIPFromRequestWithPolicy(r *http.Request, policy ClientIPPolicy) string {
	if policy.TrustForwardedFor {
		// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
		// the first is the original client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	return remoteIP(r.RemoteAddr)
}

// remoteIP strips the port from "ip:port" ("[::1]:port" for IPv6).
func remoteIP(addr string) string {
	if addr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
