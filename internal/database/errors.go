package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrMechanicNotFound   = errors.New("mechanic not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrDuplicateReference = errors.New("duplicate booking reference")
)

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
