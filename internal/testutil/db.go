// Package testutil holds database fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t testing.TB) *sqlite.DB {
	t.Helper()

	db, err := sqlite.New(sqlite.MemoryDSN)
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
