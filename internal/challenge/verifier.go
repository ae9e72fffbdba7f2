package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"invitegate/pkg/domain"
)

var (
	ErrMalformed         = errors.New("malformed challenge")
	ErrChainNotSupported = errors.New("chain not supported")
	ErrBadSignature      = errors.New("invalid signature")
	ErrNonceMismatch     = errors.New("nonce mismatch")
	ErrExpired           = errors.New("challenge expired or not yet valid")
	ErrDomainMismatch    = errors.New("challenge domain mismatch")
)

// VerifiedClaim is what a valid challenge proves.
type VerifiedClaim struct {
	Address  common.Address
	Owner    domain.Address
	ChainID  domain.ChainID
	Nonce    string
	Domain   string
	IssuedAt time.Time
}

// Verifier checks signed SIWE challenges. It does not consume nonces.
type Verifier struct {
	chains     domain.Chains
	siweDomain string
	clock      func() time.Time
}

type Option func(*Verifier)

// WithDomain requires the message's domain authority to equal d.
func WithDomain(d string) Option {
	return func(v *Verifier) {
		v.siweDomain = d
	}
}

func WithClock(clock func() time.Time) Option {
	return func(v *Verifier) {
		if clock != nil {
			v.clock = clock
		}
	}
}

func NewVerifier(chains domain.Chains, opts ...Option) *Verifier {
	v := &Verifier{chains: chains, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Verify parses message and checks, in order: chain allow-list, signature,
// nonce binding, validity window, and domain when one is configured.
func (v *Verifier) Verify(_ context.Context, message, signature, expectedNonce string) (*VerifiedClaim, error) {
	msg, err := ParseMessage(message)
	if err != nil {
		return nil, err
	}
	if !v.chains.Supported(msg.ChainID) {
		return nil, fmt.Errorf("%w: %s", ErrChainNotSupported, msg.ChainID)
	}

	signer, err := RecoverSigner(message, signature)
	if err != nil {
		return nil, err
	}
	if signer != msg.Address {
		return nil, fmt.Errorf("%w: signer does not match address", ErrBadSignature)
	}

	if expectedNonce == "" || msg.Nonce != expectedNonce {
		return nil, ErrNonceMismatch
	}

	now := v.clock()
	if msg.ExpirationTime != nil && !now.Before(*msg.ExpirationTime) {
		return nil, fmt.Errorf("%w: expired at %s", ErrExpired, msg.ExpirationTime.Format(time.RFC3339))
	}
	if msg.NotBefore != nil && now.Before(*msg.NotBefore) {
		return nil, fmt.Errorf("%w: not before %s", ErrExpired, msg.NotBefore.Format(time.RFC3339))
	}

	if v.siweDomain != "" && msg.Domain != v.siweDomain {
		return nil, fmt.Errorf("%w: %q", ErrDomainMismatch, msg.Domain)
	}

	return &VerifiedClaim{
		Address:  msg.Address,
		Owner:    domain.AddressFrom(msg.Address),
		ChainID:  msg.ChainID,
		Nonce:    msg.Nonce,
		Domain:   msg.Domain,
		IssuedAt: msg.IssuedAt,
	}, nil
}

// RecoverSigner returns the address whose key produced signature over the
// EIP-191 personal_sign hash of message. V may be 0/1 or 27/28.
func RecoverSigner(message, signature string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: want %d bytes, got %d", ErrBadSignature, crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("%w: bad recovery id", ErrBadSignature)
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
