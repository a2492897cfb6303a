package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesSchemaAndIsIdempotent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "second run must be a no-op")

	for _, table := range []string{"users", "articles", "favorites", "comments", "follows", "events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestNew_EnablesForeignKeys(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}
