package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invitegate/internal/platform/database"
	"invitegate/pkg/domain"
	"invitegate/pkg/platform/sentinel"
)

const grantColumns = `id, domain, owner, chain_id, invite_code, created_at`

// SQLStore persists grants in the invites table.
type SQLStore struct {
	db    *database.DB
	clock Clock
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

func WithSQLClock(clock Clock) SQLOption {
	return func(s *SQLStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewSQLStore(db *database.DB, opts ...SQLOption) *SQLStore {
	s := &SQLStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *SQLStore) FindExisting(ctx context.Context, name domain.DomainName, owner domain.Address, chainID domain.ChainID) (*InviteGrant, error) {
	query := s.db.Rebind(`SELECT ` + grantColumns + ` FROM invites
		WHERE (domain = ? OR owner = ?) AND chain_id = ?
		ORDER BY created_at
		LIMIT 1`)
	row := s.db.QueryRowContext(ctx, query, name.String(), owner.String(), int64(chainID))
	grant, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find grant: %w", err)
	}
	return grant, nil
}

func (s *SQLStore) CountIssued(ctx context.Context, chainID domain.ChainID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT COUNT(*) FROM invites WHERE chain_id = ?`), int64(chainID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count grants: %w", err)
	}
	return n, nil
}

func (s *SQLStore) CountByChain(ctx context.Context) ([]ChainCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chain_id, COUNT(*) FROM invites GROUP BY chain_id ORDER BY chain_id`)
	if err != nil {
		return nil, fmt.Errorf("count grants by chain: %w", err)
	}
	defer rows.Close()

	out := []ChainCount{}
	for rows.Next() {
		var (
			chain int64
			n     int
		)
		if err := rows.Scan(&chain, &n); err != nil {
			return nil, fmt.Errorf("scan chain count: %w", err)
		}
		out = append(out, ChainCount{ChainID: domain.ChainID(chain), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain counts: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Create(ctx context.Context, grant InviteGrant) (*InviteGrant, error) {
	grant = prepare(grant, s.clock)
	grant.CreatedAt = database.Timestamp(grant.CreatedAt)

	query := s.db.Rebind(`INSERT INTO invites (` + grantColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		grant.ID.String(),
		grant.Domain.String(),
		grant.Owner.String(),
		int64(grant.ChainID),
		grant.InviteCode,
		grant.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return nil, fmt.Errorf("create grant for %s on chain %s: %w", grant.Domain, grant.ChainID, sentinel.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create grant: %w", err)
	}
	return &grant, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (*InviteGrant, error) {
	var (
		id, name, owner, code string
		chain                 int64
		createdAt             time.Time
	)
	if err := row.Scan(&id, &name, &owner, &chain, &code, &createdAt); err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse grant id %q: %w", id, err)
	}
	return &InviteGrant{
		ID:         parsedID,
		Domain:     domain.DomainName(name),
		Owner:      domain.Address(owner),
		ChainID:    domain.ChainID(chain),
		InviteCode: code,
		CreatedAt:  createdAt.UTC(),
	}, nil
}
