package entity

import "time"

// Grant records that a session passed two-factor verification until ExpiresAt.
type Grant struct {
	SessionID string
	ExpiresAt time.Time
}

// Active reports whether the grant is still valid at now.
func (g Grant) Active(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}

// Enrollment is what a user needs to register the TOTP secret in an authenticator app.
type Enrollment struct {
	Secret string
	URL    string
}
