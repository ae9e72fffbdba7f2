package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.sqlite")
	db, err := Open(context.Background(), DialectSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_SQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	// idempotent
	require.NoError(t, Migrate(ctx, db))

	_, err := db.ExecContext(ctx, `INSERT INTO nonces (nonce, used_at) VALUES (?, ?)`, "abcdef123456", Timestamp(time.Now()))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO nonces (nonce, used_at) VALUES (?, ?)`, "abcdef123456", Timestamp(time.Now()))
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestMigrate_InvitesUniqueness(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))

	insert := `INSERT INTO invites (id, domain, owner, chain_id, invite_code, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	now := Timestamp(time.Now())
	_, err := db.ExecContext(ctx, insert, "1", "alice.eth", "0xaa", 1, "code-1", now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "2", "alice.eth", "0xbb", 1, "code-2", now)
	assert.True(t, IsUniqueViolation(err), "same domain on same chain")

	_, err = db.ExecContext(ctx, insert, "3", "bob.eth", "0xaa", 1, "code-3", now)
	assert.True(t, IsUniqueViolation(err), "same owner on same chain")

	_, err = db.ExecContext(ctx, insert, "4", "alice.eth", "0xaa", 5, "code-4", now)
	assert.NoError(t, err, "other chain is independent")
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	lite := &DB{Dialect: DialectSQLite}
	q := `SELECT 1 FROM invites WHERE (domain = ? OR owner = ?) AND chain_id = ?`

	assert.Equal(t, `SELECT 1 FROM invites WHERE (domain = $1 OR owner = $2) AND chain_id = $3`, pg.Rebind(q))
	assert.Equal(t, q, lite.Rebind(q))
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	in := time.Date(2024, 5, 1, 12, 30, 15, 999, loc)
	out := Timestamp(in)
	assert.Equal(t, time.UTC, out.Location())
	assert.Equal(t, 0, out.Nanosecond())
	assert.True(t, in.Truncate(time.Second).Equal(out))
}

func TestIsUniqueViolation_Other(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(context.Canceled))
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("mysql"), "x")
	require.Error(t, err)
}
