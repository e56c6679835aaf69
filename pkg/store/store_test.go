package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { db.Close() })
	return db
}
