package storage

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConstraint = errors.New("constraint violation")
)

// integrityViolation is the SQLSTATE class for foreign key, unique, check
// and not-null failures.
const integrityViolation pq.ErrorClass = "23"

// ConstraintError is an integrity violation reported by Postgres. Its message
// is the driver's message unchanged.
type ConstraintError struct {
	Code       string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return e.Err.Error()
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

// Classify tags Postgres integrity violations with ErrConstraint. Other
// errors are returned as they are.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == integrityViolation {
		return &ConstraintError{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Err:        err,
		}
	}

	return err
}

// ConstraintName returns the violated constraint, or "" when err is not a
// constraint violation.
func ConstraintName(err error) string {
	var cErr *ConstraintError
	if errors.As(err, &cErr) {
		return cErr.Constraint
	}
	return ""
}
