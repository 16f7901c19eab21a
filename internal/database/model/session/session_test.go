package session

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/database"
)

func TestSessionRows(t *testing.T) {
	db := sqlx.MustConnect("sqlite3", ":memory:")
	db.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, database.Migrate(db))

	require.NoError(t, (&Session{SessionKey: "k1", CustomerID: 7, Value: `{"cart":{}}`, Expiry: 50}).Upsert(db))
	require.NoError(t, (&Session{SessionKey: "k2", Value: `{}`, Expiry: 500}).Upsert(db))
	require.NoError(t, (&Session{SessionKey: "k1", CustomerID: 8, Value: `{}`, Expiry: 60}).Upsert(db))

	s, err := SelectByKey(db, "k1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 8, s.CustomerID)

	n, err := DeleteExpired(db, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	s, err = SelectByKey(db, "k1")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, DeleteByKey(db, "k2"))
	s, err = SelectByKey(db, "k2")
	require.NoError(t, err)
	assert.Nil(t, s)
}
