// Package domain defines domain-level errors for the twofactor feature.
package domain

import "errors"

var (
	// ErrInvalidCode is returned when a TOTP code does not match the user's secret.
	ErrInvalidCode = errors.New("invalid 2FA code")

	// ErrNotEnrolled is returned when verification is attempted before setup.
	ErrNotEnrolled = errors.New("2FA is not set up for this user")

	// ErrMissingSession is returned when a grant operation has no session id.
	ErrMissingSession = errors.New("session id is required")

	// ErrInvalidTTL is returned when a grant is requested with a non-positive lifetime.
	ErrInvalidTTL = errors.New("grant ttl must be positive")
)
