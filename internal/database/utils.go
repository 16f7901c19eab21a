package database

import (
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"WooWithTypesense/pkg/logging"
)

func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

func CreateDB(dbname string) error {
	logger := logging.GetLogger()
	logger.Info("CreateDB:>Start")
	defer logger.Info("CreateDB:>End")

	logger.Info("CreateDB:>Creating ", dbname)

	db, err := sqlx.Open("sqlite3", dbname)
	if err != nil {
		return errors.Wrapf(err, "failed sqlx.Open(%s)", dbname)
	}
	defer func(db *sqlx.DB) {
		err := db.Close()
		if err != nil {
			logger.Error(err)
		}
	}(db)

	if err := Migrate(db); err != nil {
		return err
	}
	logger.Info(dbname, " created")
	return nil
}

// Migrate creates missing tables and records the schema version.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(DB_SCHEMA); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM Version WHERE Name=$1;", "schema"); err != nil {
		return errors.Wrap(err, "failed SELECT Version")
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO Version (Name, Version) VALUES ($1, $2);", "schema", SCHEMA_VERSION); err != nil {
			return errors.Wrap(err, "failed INSERT Version")
		}
	}
	return nil
}

// Connect opens dbname, creating the file and schema when it does not exist yet.
func Connect(dbname string) (*sqlx.DB, error) {
	logger := logging.GetLogger()

	if !Exists(dbname) {
		logger.Info(dbname, " not exist")
		if err := CreateDB(dbname); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect("sqlite3", dbname)
	if err != nil {
		return nil, errors.Wrapf(err, "failed sqlx.Connect(%s)", dbname)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// CurrentVersion returns the stored schema version, 0 when not recorded.
func CurrentVersion(db *sqlx.DB) (int, error) {
	var v []Version
	if err := db.Select(&v, "SELECT * FROM Version WHERE Name=$1 ORDER BY ID DESC LIMIT 1;", "schema"); err != nil {
		return 0, errors.Wrap(err, "failed SELECT Version")
	}
	if len(v) == 0 {
		return 0, nil
	}
	return v[0].Version, nil
}
