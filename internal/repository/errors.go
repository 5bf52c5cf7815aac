// Package repository holds the gorm-backed data access layer.  Every
// default query carries gorm's soft-delete scope, so rows whose
// deleted_at is set are invisible unless a method says otherwise.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no live row matches.  Soft-deleted rows
// count as missing.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when an email is already registered,
// including by a soft-deleted account.
var ErrEmailExists = errors.New("email already exists")

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrEmailExists
	default:
		return err
	}
}
