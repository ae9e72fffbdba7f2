package models

import (
	"invitegate/internal/ledger"
	"invitegate/pkg/domain"
)

// Request is one invite attempt: a signed challenge plus the name claimed.
type Request struct {
	Message   string
	Signature string
	Domain    string
	// ExpectedNonce is the nonce bound to the caller's session; empty when
	// the caller has none.
	ExpectedNonce string
}

// Result carries the grant returned to the caller. Fresh is false when the
// domain or owner already held a grant on the chain.
type Result struct {
	Grant *ledger.InviteGrant
	Fresh bool
}

// Stats summarises issuance.
type Stats struct {
	MaxLimit  int
	Remaining int
	Issued    []ledger.ChainCount
}

// OwnedDomains lists names an address can claim on a chain.
type OwnedDomains struct {
	Address domain.Address
	ChainID domain.ChainID
	Domains []string
}

// Failure reasons reported to clients in the "code" field.
const (
	ReasonInvalidDomain           = "invalid_domain"
	ReasonInvalidChallenge        = "invalid_challenge"
	ReasonMalformedChallenge      = "malformed_challenge"
	ReasonInvalidRequest          = "invalid_request"
	ReasonInvalidSignature        = "invalid_signature"
	ReasonNonceMismatch           = "nonce_mismatch"
	ReasonMessageExpired          = "message_expired"
	ReasonDomainMismatch          = "domain_mismatch"
	ReasonChainNotSupported       = "chain_not_supported"
	ReasonNonceReuse              = "nonce_reuse"
	ReasonOwnershipNotEstablished = "ownership_not_established"
	ReasonOracleUnavailable       = "oracle_unavailable"
	ReasonCapReached              = "cap_reached"
	ReasonUpstreamError           = "upstream_error"
	ReasonLedgerInconsistent      = "ledger_inconsistent"
	ReasonInternal                = "internal"
)
