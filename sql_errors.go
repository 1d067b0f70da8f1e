package blogapi

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// UniqueViolation reports the constraint name when err is a postgres unique
// violation.
func UniqueViolation(err error) (string, bool) {
	return pqViolation(err, pqUniqueViolation)
}

// ForeignKeyViolation reports the constraint name when err is a postgres
// foreign key violation.
func ForeignKeyViolation(err error) (string, bool) {
	return pqViolation(err, pqForeignKeyViolation)
}

func pqViolation(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr.Constraint, true
	}
	return "", false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
