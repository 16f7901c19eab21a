package database

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsRepeatable(t *testing.T) {
	db := sqlx.MustConnect("sqlite3", ":memory:")
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	v, err := CurrentVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SCHEMA_VERSION, v)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM Version;"))
	assert.Equal(t, 1, count)
}

func TestConnectCreatesFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.db")
	assert.False(t, Exists(name))

	db, err := Connect(name)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, Exists(name))

	var tables []string
	require.NoError(t, db.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table' AND name IN ('Options','Sessions','Actions') ORDER BY name;"))
	assert.Equal(t, []string{"Actions", "Options", "Sessions"}, tables)
}
