// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"gorm.io/gorm"

	twofactoradapters "account_backend/internal/feature/twofactor/adapters"
	"account_backend/internal/feature/users/domain/entity"
)

// Migrate creates or updates the tables, including the unique indexes on
// users.username and users.email.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.User{}, &twofactoradapters.GrantModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
