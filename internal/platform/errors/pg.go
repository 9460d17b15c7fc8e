package errors

// Postgres mapping for the warehouse driver. Every pgx failure on the
// staging/MERGE path goes through FromPostgres so the rest of the pipeline
// only ever sees coded errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATEs the publish path can realistically hit
const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"

	pgErrSerializationFailure   = "40001"
	pgErrDeadlockDetected       = "40P01"
	pgErrLockNotAvailable       = "55P03"
	pgErrReadOnlySQLTransaction = "25006"
	pgErrCannotConnectNow       = "57P03" // server still starting up
)

// sqlstateCodes classifies known SQLSTATEs into pipeline error codes.
// A duplicate key means the MERGE already published the row; constraint and
// encoding failures point at bad input rows; the contention group stays a
// plain DB error because Retryable handles it separately
var sqlstateCodes = map[string]ErrorCode{
	pgErrUniqueViolation:           ErrorCodeDuplicateKey,
	pgErrForeignKeyViolation:       ErrorCodeInvalidArgument,
	pgErrNotNullViolation:          ErrorCodeValidation,
	pgErrCheckViolation:            ErrorCodeValidation,
	pgErrStringDataRightTruncation: ErrorCodeInvalidArgument,
	pgErrInvalidTextRepresentation: ErrorCodeInvalidArgument,
	pgErrSerializationFailure:      ErrorCodeDB,
	pgErrDeadlockDetected:          ErrorCodeDB,
	pgErrLockNotAvailable:          ErrorCodeDB,
	pgErrReadOnlySQLTransaction:    ErrorCodeUnavailable,
	pgErrCannotConnectNow:          ErrorCodeUnavailable,
}

// pgx reports some retry-worthy failures as plain text rather than a
// *pgconn.PgError, notably around COMMIT and server-side timeouts
var pgRetryableTexts = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"serialization failure",
	"canceling statement due to statement timeout",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
	"terminating connection due to administrator command",
}

// DBErrorCode maps a Postgres error to an ErrorCode. !ok means err carried
// no *pgconn.PgError anywhere in its chain and the caller should fall back
// to generic handling. A structured error with an unlisted SQLSTATE is still
// reported as ErrorCodeDB
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	if code, ok := sqlstateCodes[pgErr.Code]; ok {
		return code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with the ErrorCode its SQLSTATE maps to, defaulting
// to ErrorCodeDB for anything unstructured. Nil in, nil out
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is the formatted variant of FromPostgres
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error is transient contention worth
// retrying at the driver level. Local cancellations and deadline hits never
// retry; those belong to whoever owns the run context
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	// PgError or commit text both live at the root of the chain
	cause := Root(err)

	var pgErr *pgconn.PgError
	if stderrs.As(cause, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
			return true
		}
		return false
	}

	msg := strings.ToLower(cause.Error())
	for _, pat := range pgRetryableTexts {
		if strings.Contains(msg, pat) {
			return true
		}
	}
	return false
}
