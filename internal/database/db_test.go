package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Driver:      DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "gig.db"),
		AutoMigrate: true,
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := Open(ctx, testOptions(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, DriverSQLite, dialect.Name)
	assert.Empty(t, dialect.ForUpdate)

	version, err := MigrationVersion(ctx, db, DriverSQLite)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM performances`).Scan(&n))
	assert.Zero(t, n)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor(DriverMySQL)
	require.NoError(t, err)
	assert.Equal(t, " FOR UPDATE", d.ForUpdate)

	_, err = DialectFor("postgres")
	assert.Error(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db, _, err := Open(ctx, testOptions(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("boom")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO venues (id, name, created_at) VALUES ('v1', 'Hall', 0)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n))
	assert.Zero(t, n)

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO venues (id, name, created_at) VALUES ('v1', 'Hall', 0)`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n))
	assert.Equal(t, 1, n)
}
