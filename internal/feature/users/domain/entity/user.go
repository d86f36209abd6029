// Package entity defines the domain entities for the users feature.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
// Username and Email carry unique indexes; the store is the final authority on uniqueness.
type User struct {
	// ID is generated at creation and never changes.
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Username string `gorm:"uniqueIndex;size:64;not null"`
	Email    string `gorm:"uniqueIndex;size:255;not null"`
	Mobile   string `gorm:"size:32"`

	// PasswordHash is a bcrypt hash. Plaintext passwords are never stored.
	PasswordHash string `gorm:"size:255;not null"`

	// TOTPSecret is empty until the user sets up two-factor authentication.
	TOTPSecret string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserChanges lists the profile fields to update. Nil fields are left untouched.
type UserChanges struct {
	Username *string
	Email    *string
}

// Empty reports whether no field is set.
func (c UserChanges) Empty() bool {
	return c.Username == nil && c.Email == nil
}
