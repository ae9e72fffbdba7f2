package nonce

import (
	"context"
	"fmt"
	"time"

	"invitegate/internal/platform/database"
	"invitegate/pkg/platform/sentinel"
)

// SQLStore records consumed nonces in the nonces table (Postgres or SQLite).
type SQLStore struct {
	db    *database.DB
	clock Clock
}

// SQLOption configures a SQLStore.
type SQLOption func(*SQLStore)

// WithSQLClock overrides time.Now.
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

func (s *SQLStore) Issue(_ context.Context) (string, error) {
	return NewToken(), nil
}

// Consume relies on the primary key: of several concurrent inserts for one
// token exactly one affects a row.
func (s *SQLStore) Consume(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	query := s.db.Rebind(`INSERT INTO nonces (nonce, used_at) VALUES (?, ?) ON CONFLICT (nonce) DO NOTHING`)
	res, err := s.db.ExecContext(ctx, query, token, database.Timestamp(s.clock()))
	if err != nil {
		return fmt.Errorf("consume nonce: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume nonce: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("consume nonce: %w", sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *SQLStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := database.Timestamp(s.clock().Add(-maxAge))
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM nonces WHERE used_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep nonces: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep nonces: rows affected: %w", err)
	}
	if n > 0 {
		sweptTotal.WithLabelValues(string(s.db.Dialect)).Add(float64(n))
	}
	return int(n), nil
}
