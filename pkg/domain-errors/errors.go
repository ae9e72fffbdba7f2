// Package domainerrors carries the user-facing error taxonomy of the invite flow.
//
// Every error that crosses the HTTP boundary is a *Error with:
//   - Code: the kind (input, auth, ownership, capacity, upstream, internal), which
//     decides the HTTP status;
//   - Reason: a stable machine-readable tag clients can switch on;
//   - Message: a human string safe to show to the requester.
//
// Stores and clients return sentinel errors (pkg/platform/sentinel) or their own
// package errors; the orchestrator translates them into this taxonomy.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code is the error kind.
type Code string

const (
	// CodeInvalidInput: malformed domain or challenge payload. The user corrects and resubmits.
	CodeInvalidInput Code = "invalid_input"
	// CodeAuthFailed: nonce reuse, unsupported chain, domain mismatch. The user restarts
	// the challenge from a fresh nonce.
	CodeAuthFailed Code = "auth_failed"
	// CodeUnauthorized: the signature itself does not hold up.
	CodeUnauthorized Code = "unauthorized"
	// CodeOwnership: the indexer does not confirm ownership.
	CodeOwnership Code = "ownership"
	// CodeCapacity: the issuance cap is reached. No retry helps.
	CodeCapacity Code = "capacity"
	// CodeRateLimited: too many requests from one client.
	CodeRateLimited Code = "rate_limited"
	// CodeUpstream: issuer or oracle failure. Safe to retry a fresh full flow.
	CodeUpstream Code = "upstream"
	// CodeInternal: ledger inconsistency or unexpected fault.
	CodeInternal Code = "internal"
)

// Error is a domain error with a kind, a stable reason tag and a safe message.
type Error struct {
	Code    Code
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error whose reason defaults to the code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Reason: string(code), Message: message}
}

// NewReason creates an error with an explicit reason tag.
func NewReason(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Wrap attaches a cause to a new domain error.
func Wrap(err error, code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasReason reports whether err carries the given reason tag.
func HasReason(err error, reason string) bool {
	de, ok := As(err)
	return ok && de.Reason == reason
}

// ToHTTPStatus maps a kind to its response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeAuthFailed, CodeOwnership, CodeCapacity:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsServerSide reports whether the kind hides its message from clients.
func IsServerSide(code Code) bool {
	return code == CodeUpstream || code == CodeInternal
}
