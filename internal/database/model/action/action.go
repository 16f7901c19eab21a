package action

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooWithTypesense/pkg/logging"
)

const (
	STATUS_PENDING  = "pending"
	STATUS_RUNNING  = "in-progress"
	STATUS_COMPLETE = "complete"
	STATUS_FAILED   = "failed"
)

// Action is a delayed unit of work, one row of the Actions table.
type Action struct {
	ID          string `db:"ID"`
	Hook        string `db:"Hook"`
	Args        string `db:"Args"`
	GroupName   string `db:"GroupName"`
	ScheduledAt int64  `db:"ScheduledAt"`
	Status      string `db:"Status"`
	Attempts    int    `db:"Attempts"`
	Message     string `db:"Message"`
	CreatedAt   int64  `db:"CreatedAt"`
	UpdatedAt   int64  `db:"UpdatedAt"`
}

func (a *Action) Insert(db *sqlx.DB) error {
	logger := logging.GetLogger()
	logger.Debug("Start Action.Insert")
	defer logger.Debug("End Action.Insert")

	query := `INSERT INTO Actions (ID, Hook, Args, GroupName, ScheduledAt, Status, Attempts, Message, CreatedAt, UpdatedAt)
VALUES (:ID, :Hook, :Args, :GroupName, :ScheduledAt, :Status, :Attempts, :Message, :CreatedAt, :UpdatedAt);`
	logger.Debugf("INSERT:\n%s(%v)", query, a)

	if _, err := db.NamedExec(query, a); err != nil {
		return errors.Wrapf(err, "failed INSERT to dbsqlite; query:\n%s(%v)", query, a)
	}
	return nil
}

// ExistsPending reports whether an identical hook+args action is still waiting.
func ExistsPending(db *sqlx.DB, hook, args string) (bool, error) {
	query := "SELECT COUNT(*) FROM Actions WHERE Hook=$1 AND Args=$2 AND Status IN ($3, $4);"
	var count int
	if err := db.Get(&count, query, hook, args, STATUS_PENDING, STATUS_RUNNING); err != nil {
		return false, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s, %s)", query, hook, args)
	}
	return count > 0, nil
}

// SelectDue returns pending actions scheduled at or before now, oldest first.
func SelectDue(db *sqlx.DB, now int64, limit int) ([]*Action, error) {
	logger := logging.GetLogger()
	logger.Debug("Start Action.SelectDue")
	defer logger.Debug("End Action.SelectDue")

	query := "SELECT * FROM Actions WHERE Status=$1 AND ScheduledAt<=$2 ORDER BY ScheduledAt, CreatedAt LIMIT $3;"
	var actions []*Action
	if err := db.Select(&actions, query, STATUS_PENDING, now, limit); err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%d)", query, now)
	}
	logger.Debugf("Due actions: %d", len(actions))
	return actions, nil
}

func SelectByStatus(db *sqlx.DB, status string) ([]*Action, error) {
	query := "SELECT * FROM Actions WHERE Status=$1 ORDER BY ScheduledAt;"
	var actions []*Action
	if err := db.Select(&actions, query, status); err != nil {
		return nil, errors.Wrapf(err, "failed SELECT to dbsqlite; query:\n%s(%s)", query, status)
	}
	return actions, nil
}

// ResetStale puts in-progress actions last touched before claimedBefore back
// to pending. Such rows were claimed by a worker that never finished them.
func ResetStale(db *sqlx.DB, claimedBefore, now int64) (int64, error) {
	query := "UPDATE Actions SET Status=$1, Message=$2, UpdatedAt=$3 WHERE Status=$4 AND UpdatedAt<$5;"
	res, err := db.Exec(query, STATUS_PENDING, "claim timed out", now, STATUS_RUNNING, claimedBefore)
	if err != nil {
		return 0, errors.Wrapf(err, "failed UPDATE to dbsqlite; query:\n%s(%d)", query, claimedBefore)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed RowsAffected")
	}
	if n > 0 {
		logging.GetLogger().Infof("Stale actions reset: %d", n)
	}
	return n, nil
}

// SetStatus stores the new status, message and bumps Attempts when leaving running.
func (a *Action) SetStatus(db *sqlx.DB, status, message string, now int64) error {
	if a.Status == STATUS_RUNNING && status != STATUS_RUNNING {
		a.Attempts++
	}
	a.Status, a.Message, a.UpdatedAt = status, message, now

	query := "UPDATE Actions SET Status=:Status, Message=:Message, Attempts=:Attempts, UpdatedAt=:UpdatedAt WHERE ID=:ID;"
	if _, err := db.NamedExec(query, a); err != nil {
		return errors.Wrapf(err, "failed UPDATE to dbsqlite; query:\n%s(%s)", query, a.ID)
	}
	return nil
}
