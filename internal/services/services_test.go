package services

import (
	"database/sql"
	"testing"

	"github.com/miguelsv/chatline-be/internal/database"
	"github.com/miguelsv/chatline-be/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory database with the full schema applied. The
// pool is pinned to one connection so every statement sees the same
// in-memory database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func promoteToAdmin(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec("UPDATE users SET role = ? WHERE id = ?", models.RoleAdmin, id)
	require.NoError(t, err)
}
