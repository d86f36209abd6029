// Package authctx carries the authenticated caller through a request.
package authctx

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrNotAuthenticated is returned when an operation needs a caller identity and has none.
var ErrNotAuthenticated = errors.New("user not authenticated")

const (
	keyUserID            = "userID"
	keySessionID         = "sessionID"
	keyTwoFactorVerified = "twoFactorVerified"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID            uuid.UUID
	SessionID         string
	TwoFactorVerified bool
}

// Authenticated reports whether the principal carries a user identity.
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

// SetIdentity records the user and session taken from a verified token.
func SetIdentity(c *gin.Context, userID uuid.UUID, sessionID string) {
	c.Set(keyUserID, userID)
	c.Set(keySessionID, sessionID)
}

// SetTwoFactorVerified records the 2FA status of the current session.
func SetTwoFactorVerified(c *gin.Context, verified bool) {
	c.Set(keyTwoFactorVerified, verified)
}

// FromGin builds the Principal from values set by the auth middlewares.
// Missing values yield the zero Principal, which is not authenticated.
func FromGin(c *gin.Context) Principal {
	var p Principal
	if v, ok := c.Get(keyUserID); ok {
		p.UserID, _ = v.(uuid.UUID)
	}
	p.SessionID = c.GetString(keySessionID)
	p.TwoFactorVerified = c.GetBool(keyTwoFactorVerified)
	return p
}
