package testutil

import (
	"net/http"

	"invitegate/pkg/requestcontext"
)

// FromClient attaches client metadata the way the metadata middleware does.
func FromClient(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "testutil")
	return req.WithContext(ctx)
}

// WithRequestID attaches a request id.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
