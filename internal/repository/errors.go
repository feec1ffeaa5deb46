// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error codes: ErrNotFound maps to 404,
// ErrValidation to 400, ErrDuplicate to 409 and ErrBadReference to 422.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no row matched the requested identifier.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a required field is missing from a write
// request. The wrapping message names the field.
var ErrValidation = errors.New("validation failed")

// ErrDuplicate is returned when a uniqueness constraint is violated, such
// as a second invoice for the same service request or a duplicate policy
// number.
var ErrDuplicate = errors.New("duplicate")

// ErrBadReference is returned when a foreign key target does not resolve,
// such as a service request naming a customer that does not exist.
var ErrBadReference = errors.New("invalid reference")

// MySQL server error numbers for constraint violations.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrNoReferencedRow = 1452
)

// classifyConstraint inspects a driver error and maps integrity-constraint
// violations onto the sentinel taxonomy. Unrecognized errors pass through
// unchanged. The string checks cover the sqlite driver used by the test
// suite, whose constraint errors carry no typed code.
func classifyConstraint(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrDupEntry:
			return ErrDuplicate
		case mysqlErrNoReferencedRow:
			return ErrBadReference
		}
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrBadReference
	}
	return err
}
