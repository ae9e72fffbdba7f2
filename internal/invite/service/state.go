package service

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"invitegate/internal/challenge"
)

// State is a step of the invite flow.
type State string

const (
	StateAwaitingChallenge State = "awaiting_challenge"
	StateVerifying         State = "verifying"
	StateNonceConsuming    State = "nonce_consuming"
	StateOwnershipChecking State = "ownership_checking"
	StateLedgerChecking    State = "ledger_checking"
	StateIssuing           State = "issuing"
	StateRecording         State = "recording"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// flow tracks how far one request got.
type flow struct {
	state State
	claim *challenge.VerifiedClaim
	span  trace.Span
}

func newFlow(span trace.Span) *flow {
	return &flow{state: StateAwaitingChallenge, span: span}
}

func (f *flow) enter(s State) {
	f.state = s
	f.span.AddEvent("state", trace.WithAttributes(attribute.String("invite.state", string(s))))
}
