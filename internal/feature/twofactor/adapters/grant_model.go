package adapters

import (
	"time"

	"account_backend/internal/feature/twofactor/domain/entity"
)

// GrantModel is the GORM model for the two_factor_grants table.
type GrantModel struct {
	SessionID string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (GrantModel) TableName() string {
	return "two_factor_grants"
}

// ToEntity converts the GORM model to a domain entity.
func (m *GrantModel) ToEntity() entity.Grant {
	return entity.Grant{SessionID: m.SessionID, ExpiresAt: m.ExpiresAt}
}
