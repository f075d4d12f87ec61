// Package repository implements MySQL persistence for time slots,
// reservations, teams and game scores. Row lookups that find nothing
// return sql.ErrNoRows; the booking layer translates that into its own
// not-found error. All timestamp columns are stored as DATETIME in
// UTC.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a write trips a UNIQUE constraint,
// such as inserting a second team under the same reservation. It lets
// callers react to duplicates without parsing driver error codes.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers we need to recognize.
const (
	mysqlDuplicateEntry = 1062
	mysqlDeadlock       = 1213
)

// mapDuplicate converts a duplicate-key driver error into ErrConflict
// and passes every other error through untouched.
func mapDuplicate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrConflict
	}
	return err
}

// isDeadlock reports whether err is the InnoDB deadlock error. The
// store retries such transactions once.
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDeadlock
}
