package service

import (
	"context"

	"invitegate/internal/challenge"
	"invitegate/internal/ledger"
	"invitegate/pkg/domain"
)

type NonceStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, token string) error
}

type ChallengeVerifier interface {
	Verify(ctx context.Context, message, signature, expectedNonce string) (*challenge.VerifiedClaim, error)
}

type OwnershipOracle interface {
	OwnsDomain(ctx context.Context, address domain.Address, name domain.DomainName, chainID domain.ChainID) (bool, error)
	Domains(ctx context.Context, address domain.Address, chainID domain.ChainID) ([]string, error)
}

type Ledger interface {
	FindExisting(ctx context.Context, name domain.DomainName, owner domain.Address, chainID domain.ChainID) (*ledger.InviteGrant, error)
	CountIssued(ctx context.Context, chainID domain.ChainID) (int, error)
	CountByChain(ctx context.Context) ([]ledger.ChainCount, error)
	Create(ctx context.Context, grant ledger.InviteGrant) (*ledger.InviteGrant, error)
}

type InviteIssuer interface {
	Mint(ctx context.Context, chainID domain.ChainID) (string, error)
}

type GrantPublisher interface {
	PublishGranted(ctx context.Context, grant ledger.InviteGrant) error
}
