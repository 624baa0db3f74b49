package mocks

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	// register the sqlite driver
	_ "modernc.org/sqlite"
)

// NewTransactionDB opens an empty in-memory database whose only purpose is to
// hand out real transactions. It is closed when the test ends.
func NewTransactionDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping())
	return db
}
