package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by Update and Delete when the key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidKey is returned when a lookup uses a column that is not a key.
	ErrInvalidKey = errors.New("invalid key field")
	// ErrInvalidInput marks payloads the mapper refuses to write.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError reports a failed store operation. Err is the driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IntegrityError is a StoreError caused by a uniqueness, foreign key or check
// constraint violation. errors.As matches it as both *IntegrityError and
// *StoreError.
type IntegrityError struct {
	*StoreError
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("store: %s: integrity violation: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.StoreError
}

// wrapErr classifies err for op. Errors that are already classified are
// returned unchanged.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidKey) || errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isIntegrityViolation(err) {
		return &IntegrityError{StoreError: &StoreError{Op: op, Err: err}}
	}
	return &StoreError{Op: op, Err: err}
}

func isIntegrityViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 23: integrity_constraint_violation
		return pqErr.Code.Class() == "23"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
