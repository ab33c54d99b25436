package store

import (
	"database/sql"
	"testing"

	"github.com/Alex20507/tg-card/internal/db"
	"github.com/stretchr/testify/require"
)

// openTestDB opens a fresh in-memory SQLite database with the full
// schema applied.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", db.SQLiteDSN(":memory:"))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.NoError(t, db.Migrate(conn, db.DriverSQLite))
	return conn
}
