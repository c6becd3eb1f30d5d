package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrorClassification tells whether a failed database operation may succeed
// if attempted again.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be retried.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the operation may succeed on a later attempt,
	// e.g. after another writer released its lock.
	Retryable
)

// ClassifySQLiteError inspects err for a go-sqlite3 driver error. ok is false
// when err does not originate from the driver, in which case the caller
// should apply its own default.
//
// Retryable codes:
//   - SQLITE_BUSY, SQLITE_LOCKED: another connection holds the lock
//   - SQLITE_IOERR, SQLITE_FULL: the disk may recover
//   - SQLITE_INTERRUPT, SQLITE_PROTOCOL
//
// Everything else (constraint violations, schema errors, corruption) is
// [NonRetryable].
func ClassifySQLiteError(err error) (class ErrorClassification, ok bool) {
	var sqliteErr sqlite3.Error
	if err == nil || !errors.As(err, &sqliteErr) {
		return NonRetryable, false
	}

	switch sqliteErr.Code {
	case sqlite3.ErrBusy,
		sqlite3.ErrLocked,
		sqlite3.ErrIoErr,
		sqlite3.ErrFull,
		sqlite3.ErrInterrupt,
		sqlite3.ErrProtocol:
		return Retryable, true
	}

	return NonRetryable, true
}
