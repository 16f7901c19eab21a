package option

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooWithTypesense/pkg/logging"
)

// Option is one row of the Options table, a name/value pair like wp_options.
type Option struct {
	Name      string `db:"Name"`
	Value     string `db:"Value"`
	UpdatedAt int64  `db:"UpdatedAt"`
}

// SelectByName returns nil, nil when the option is not stored.
func SelectByName(db *sqlx.DB, name string) (*Option, error) {
	logger := logging.GetLogger()
	logger.Debug("Start Option.SelectByName")
	defer logger.Debug("End Option.SelectByName")

	query := "SELECT Name, Value, UpdatedAt FROM Options WHERE Name=$1;"
	logger.Debugf("SELECT:\n%s(%s)", query, name)

	var o Option
	err := db.Get(&o, query, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, name)
	}
	return &o, nil
}

func (o *Option) Upsert(db *sqlx.DB) error {
	logger := logging.GetLogger()
	logger.Debug("Start Option.Upsert")
	defer logger.Debug("End Option.Upsert")

	if o.UpdatedAt == 0 {
		o.UpdatedAt = time.Now().Unix()
	}
	query := "INSERT INTO Options (Name, Value, UpdatedAt) VALUES (:Name, :Value, :UpdatedAt) ON CONFLICT(Name) DO UPDATE SET Value=excluded.Value, UpdatedAt=excluded.UpdatedAt;"
	logger.Debugf("UPSERT:\n%s(%s)", query, o.Name)

	if _, err := db.NamedExec(query, o); err != nil {
		return errors.Wrapf(err, "failed UPSERT to dbsqlite; query:\n%s(%s)", query, o.Name)
	}
	return nil
}

func DeleteByName(db *sqlx.DB, name string) error {
	query := "DELETE FROM Options WHERE Name=$1;"
	if _, err := db.Exec(query, name); err != nil {
		return errors.Wrapf(err, "failed DELETE in dbsqlite; query:\n%s(%s)", query, name)
	}
	return nil
}
