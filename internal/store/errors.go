package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrTaskNotFound is returned when a task id is not present in the local
	// task store.
	ErrTaskNotFound = errors.New("task was not found")

	// ErrOperationNotFound is returned when a pending operation id is not
	// present in the queue.
	ErrOperationNotFound = errors.New("pending operation was not found")

	// ErrSyncConfigNotFound is returned when the installation has never
	// persisted a sync config record.
	ErrSyncConfigNotFound = errors.New("sync config was not found")

	// ErrNilDatabase is returned when a repository is constructed over a nil
	// connection.
	ErrNilDatabase = errors.New("database connection is nil")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query with the
	// query builder fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrEncodingColumn is returned when a structured column value cannot be
	// serialized or deserialized.
	ErrEncodingColumn = errors.New("failed to encode column value")
)
