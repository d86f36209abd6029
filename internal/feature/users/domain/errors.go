// Package domain defines domain-level errors for the users feature.
package domain

import (
	"errors"
	"fmt"
)

// Field names reported by ConflictError and ValidationError.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldMobile   = "mobile"
)

var (
	// ErrUserNotFound indicates that no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned by login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTwoFactorRequired is returned when a password change is attempted
	// from a session that has not passed two-factor verification.
	ErrTwoFactorRequired = errors.New("2FA is required to update password")
)

// ConflictError reports that another user already holds a unique field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "user already exists"
	}
	return e.Field + " already exists"
}

// ValidationError reports malformed input that reached the usecase.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps an unexpected failure talking to the user store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("user store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is a ConflictError, optionally for a specific field.
func IsConflict(err error, field string) bool {
	var ce *ConflictError
	if !errors.As(err, &ce) {
		return false
	}
	return field == "" || ce.Field == field
}
