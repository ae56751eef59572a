package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by multi-step writes. Services translate these
// into the API error taxonomy.
var (
	// ErrDuplicateRegistration reports that the (student, module) pair is
	// already registered.
	ErrDuplicateRegistration = errors.New("registration already exists for student and module")
	// ErrNotRegistered reports a grade write for a pair without a
	// registration.
	ErrNotRegistered = errors.New("no registration exists for student and module")
	// ErrDuplicateGrade reports that the (student, module) pair already
	// holds a grade.
	ErrDuplicateGrade = errors.New("grade already exists for student and module")
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. Used as the second line of defense behind in-transaction
// existence checks.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
