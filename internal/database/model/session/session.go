package session

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooWithTypesense/pkg/logging"
)

// Session is a mirrored WooCommerce customer session. Value holds the
// session data as a JSON object keyed like WC()->session.
type Session struct {
	ID         int    `db:"ID"`
	SessionKey string `db:"SessionKey"`
	CustomerID int    `db:"CustomerID"`
	Value      string `db:"Value"`
	Expiry     int64  `db:"Expiry"`
}

// SelectByKey returns nil, nil when the key is unknown.
func SelectByKey(db *sqlx.DB, key string) (*Session, error) {
	logger := logging.GetLogger()
	logger.Debug("Start Session.SelectByKey")
	defer logger.Debug("End Session.SelectByKey")

	query := "SELECT * FROM Sessions WHERE SessionKey=$1;"
	logger.Debugf("SELECT:\n%s(%s)", query, key)

	var s Session
	err := db.Get(&s, query, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, key)
	}
	return &s, nil
}

func (s *Session) Upsert(db *sqlx.DB) error {
	logger := logging.GetLogger()
	logger.Debug("Start Session.Upsert")
	defer logger.Debug("End Session.Upsert")

	query := `INSERT INTO Sessions (SessionKey, CustomerID, Value, Expiry) VALUES (:SessionKey, :CustomerID, :Value, :Expiry)
ON CONFLICT(SessionKey) DO UPDATE SET CustomerID=excluded.CustomerID, Value=excluded.Value, Expiry=excluded.Expiry;`
	logger.Debugf("UPSERT:\n%s(%s)", query, s.SessionKey)

	if _, err := db.NamedExec(query, s); err != nil {
		return errors.Wrapf(err, "failed UPSERT to dbsqlite; query:\n%s(%s)", query, s.SessionKey)
	}
	return nil
}

func DeleteByKey(db *sqlx.DB, key string) error {
	query := "DELETE FROM Sessions WHERE SessionKey=$1;"
	if _, err := db.Exec(query, key); err != nil {
		return errors.Wrapf(err, "failed DELETE in dbsqlite; query:\n%s(%s)", query, key)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is before now and returns the row count.
func DeleteExpired(db *sqlx.DB, now int64) (int64, error) {
	query := "DELETE FROM Sessions WHERE Expiry < $1;"
	r, err := db.Exec(query, now)
	if err != nil {
		return 0, errors.Wrapf(err, "failed DELETE in dbsqlite; query:\n%s(%d)", query, now)
	}
	n, _ := r.RowsAffected()
	return n, nil
}
