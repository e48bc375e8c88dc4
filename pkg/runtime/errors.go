// Package runtime owns the database session and runs parameterized statements.
package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrClosed is returned when a statement is issued after Close.
	ErrClosed = errors.New("database connection closed")
)

// ConnectionError is returned when the session cannot be established.
// It is fatal for the process.
type ConnectionError struct {
	Target string
	Err    error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("unable to connect to database %s: %v", e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ValidationError represents bad user input rejected before any statement
// is sent.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// StatementError represents a statement rejected by the database. The
// connection stays usable.
type StatementError struct {
	Op         string
	Query      string
	Code       string
	Constraint string
	Column     string
	Err        error
}

// Error implements the error interface.
func (e *StatementError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: statement failed", e.Op)
	if e.Constraint != "" {
		fmt.Fprintf(&b, " (constraint %s)", e.Constraint)
	} else if e.Column != "" {
		fmt.Fprintf(&b, " (column %s)", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the underlying error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// ConsistencyError is returned when a later step of a multi-statement
// operation fails after an earlier one succeeded. RolledBack reports whether
// the earlier steps were undone; when false the database may need manual
// cleanup.
type ConsistencyError struct {
	Op         string
	Step       string
	RolledBack bool
	Err        error
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	state := "earlier steps rolled back"
	if !e.RolledBack {
		state = "earlier steps may be left behind, manual cleanup required"
	}
	return fmt.Sprintf("%s: step %q failed (%s): %v", e.Op, e.Step, state, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// newStatementError wraps err, lifting the Postgres diagnostic fields when
// the driver supplies them.
func newStatementError(op, query string, err error) *StatementError {
	se := &StatementError{Op: op, Query: query, Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se.Code = pgErr.Code
		se.Constraint = pgErr.ConstraintName
		se.Column = pgErr.ColumnName
	}

	return se
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

func hasCode(err error, code string) bool {
	var se *StatementError
	if errors.As(err, &se) && se.Code == code {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
