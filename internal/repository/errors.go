package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyExists   = errors.New("task already exists")
	ErrDatabaseConnection  = errors.New("database connection error")
	ErrInvalidData         = errors.New("invalid data provided")
	ErrConstraintViolation = errors.New("database constraint violation")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrReadOnlyTransaction = errors.New("write attempted in read-only transaction")
)

type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// HandlePgxError classifies a pgx error into one of the sentinel errors above.
func HandlePgxError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return WrapError(op, ErrTaskNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return WrapError(op, ErrTaskAlreadyExists)
		case "23502", "23503", "23514":
			return WrapError(op, fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName))
		case "08000", "08003", "08006":
			return WrapError(op, ErrDatabaseConnection)
		case "22P02", "22001":
			return WrapError(op, ErrInvalidData)
		case "25006":
			return WrapError(op, ErrReadOnlyTransaction)
		default:
			return WrapError(op, fmt.Errorf("database error [%s]: %s", pgErr.Code, pgErr.Message))
		}
	}

	return WrapError(op, err)
}

// isExpectedPgxError reports failures that are part of normal operation:
// a missing row or a duplicate title.
func isExpectedPgxError(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrTaskAlreadyExists)
}

func IsConstraintError(err error) bool {
	return errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrTaskAlreadyExists)
}

func IsConnectionError(err error) bool {
	return errors.Is(err, ErrDatabaseConnection)
}
