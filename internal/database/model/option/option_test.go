package option

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooWithTypesense/internal/database"
)

func memoryDB(t *testing.T) *sqlx.DB {
	db := sqlx.MustConnect("sqlite3", ":memory:")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUpsertAndSelect(t *testing.T) {
	db := memoryDB(t)

	o, err := SelectByName(db, "store_id")
	require.NoError(t, err)
	assert.Nil(t, o)

	require.NoError(t, (&Option{Name: "store_id", Value: "1"}).Upsert(db))
	require.NoError(t, (&Option{Name: "store_id", Value: "2"}).Upsert(db))

	o, err = SelectByName(db, "store_id")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "2", o.Value)
	assert.NotZero(t, o.UpdatedAt)

	require.NoError(t, DeleteByName(db, "store_id"))
	o, err = SelectByName(db, "store_id")
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestUpsertFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite3")

	mock.ExpectExec("INSERT INTO Options").WillReturnError(errors.New("disk I/O error"))

	err = (&Option{Name: "store_id", Value: "1"}).Upsert(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite3")

	mock.ExpectQuery("SELECT Name, Value, UpdatedAt FROM Options").WillReturnError(errors.New("locked"))

	_, err = SelectByName(db, "store_id")
	assert.Error(t, err)
}
