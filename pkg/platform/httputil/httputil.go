// Package httputil centralizes JSON encoding and domain error rendering so
// every handler emits the same envelope: {"error": <message>, "code": <reason>}.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "invitegate/pkg/domain-errors"
)

const maxBodyBytes = 64 << 10

// genericServerMessage is what clients see for upstream and internal failures.
const genericServerMessage = "Unknown error. Try again after a while."

// Validatable is implemented by request bodies that validate and normalize themselves.
type Validatable interface {
	Validate() error
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err. Domain errors keep their message unless they are
// server-side kinds; anything else is reported as internal.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		de = dErrors.New(dErrors.CodeInternal, genericServerMessage)
	}
	msg := de.Message
	if dErrors.IsServerSide(de.Code) {
		msg = genericServerMessage
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorResponse{Error: msg, Code: de.Reason})
}

// DecodeAndPrepare decodes a JSON body into T and validates it. On failure it
// writes a 400 and returns ok=false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.NewReason(dErrors.CodeInvalidInput, "invalid_request", "Invalid request body."))
		return nil, false
	}
	if err := PT(&req).Validate(); err != nil {
		logger.InfoContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	return &req, true
}
