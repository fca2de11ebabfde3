// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/nikhil/taskflow/internal/config"
	"github.com/nikhil/taskflow/internal/database"
)

// New returns an in-memory database with the schema applied. It is closed
// when the test ends.
func New(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.InitSchema(t.Context(), db, config.DriverSQLite))
	return db
}

// Count returns the number of rows in table matching the optional where clause.
func Count(t testing.TB, db *sql.DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRowContext(t.Context(), query, args...).Scan(&n))
	return n
}
