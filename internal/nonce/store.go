// Package nonce issues single-use challenge nonces and records their
// consumption. A nonce is never stored on issue; only consumed nonces are
// recorded, and those records are swept once older than the retention window.
package nonce

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrEmptyToken is returned when Consume is called without a token.
var ErrEmptyToken = errors.New("nonce: empty token")

var sweptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invitegate_nonces_swept_total",
	Help: "Consumed nonce records removed by the sweeper",
}, []string{"backend"})

// Store is implemented by every backend.
type Store interface {
	Issue(ctx context.Context) (string, error)
	// Consume marks token used. A second Consume of the same token fails with
	// an error wrapping sentinel.ErrAlreadyUsed, whichever caller wins.
	Consume(ctx context.Context, token string) error
	// Sweep deletes consumed records older than maxAge and returns how many.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// Clock returns the current time.
type Clock func() time.Time

// NewToken returns 32 lowercase hex characters of random entropy, which is a
// valid SIWE nonce (alphanumeric, at least 8 characters).
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
