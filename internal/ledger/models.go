// Package ledger records issued invite grants. A grant is unique per chain
// by domain and, independently, by owner. Rows are never updated or deleted.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"invitegate/pkg/domain"
)

// InviteGrant is one issued invite.
type InviteGrant struct {
	ID         uuid.UUID
	Domain     domain.DomainName
	Owner      domain.Address
	ChainID    domain.ChainID
	InviteCode string
	CreatedAt  time.Time
}

// ChainCount is the number of grants on one chain.
type ChainCount struct {
	ChainID domain.ChainID
	Count   int
}

// Store is implemented by the memory and SQL ledgers.
type Store interface {
	// FindExisting returns the grant matching (domain OR owner) on chainID,
	// or sentinel.ErrNotFound.
	FindExisting(ctx context.Context, name domain.DomainName, owner domain.Address, chainID domain.ChainID) (*InviteGrant, error)
	CountIssued(ctx context.Context, chainID domain.ChainID) (int, error)
	CountByChain(ctx context.Context) ([]ChainCount, error)
	// Create inserts grant, failing with sentinel.ErrConflict when a grant
	// for the same domain or owner on the chain already exists.
	Create(ctx context.Context, grant InviteGrant) (*InviteGrant, error)
}

// Clock returns the current time.
type Clock func() time.Time

func prepare(grant InviteGrant, clock Clock) InviteGrant {
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = clock()
	}
	return grant
}
