// Package challengetest builds signed SIWE challenges for tests.
package challengetest

import (
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"invitegate/internal/challenge"
	"invitegate/pkg/domain"
)

// Signer is a throwaway secp256k1 wallet.
type Signer struct {
	key     *ecdsa.PrivateKey
	Address common.Address
}

func NewSigner(t testing.TB) *Signer {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &Signer{key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// Owner is the lowercase form used as a ledger key.
func (s *Signer) Owner() domain.Address {
	return domain.AddressFrom(s.Address)
}

// Sign returns a personal_sign signature with V in 27/28 form, as wallets do.
func (s *Signer) Sign(t testing.TB, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), s.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

// Message returns a well-formed message for this signer.
func (s *Signer) Message(chainID domain.ChainID, nonce string) *challenge.Message {
	return &challenge.Message{
		Domain:    "stems.social",
		Address:   s.Address,
		Statement: "Sign in with Ethereum to claim an invite.",
		URI:       "https://stems.social",
		Version:   "1",
		ChainID:   chainID,
		Nonce:     nonce,
		IssuedAt:  time.Now().UTC().Add(-time.Minute).Truncate(time.Second),
	}
}

// SignedChallenge returns a rendered message and its signature.
func (s *Signer) SignedChallenge(t testing.TB, chainID domain.ChainID, nonce string) (message, signature string) {
	t.Helper()
	message = s.Message(chainID, nonce).String()
	return message, s.Sign(t, message)
}
