package store

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned when no tenant has the requested id or name.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrDuplicateTenant is returned when a tenant name or slug is already used.
	ErrDuplicateTenant = errors.New("tenant name or slug already exists")

	// ErrNoSnapshot is returned when a tenant has no snapshot generation yet.
	ErrNoSnapshot = errors.New("no snapshot generation")

	ErrObjectNotFound = errors.New("object not found")
	ErrUserNotFound   = errors.New("user not found")

	ErrInvalidSlug = errors.New("invalid tenant slug")
)

// PersistenceError wraps a storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err and a *PersistenceError otherwise.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
