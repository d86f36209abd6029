package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	twofactoradapters "account_backend/internal/feature/twofactor/adapters"
	"account_backend/internal/feature/twofactor/usecase"
	"account_backend/internal/platform/session"
)

// grantKeyPrefix namespaces the 2FA grant keys in Redis.
const grantKeyPrefix = "session"

// NewGrantStore creates the 2FA GrantStore implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the relational database.
func NewGrantStore(rdb *redis.Client, db *gorm.DB, logger *slog.Logger) usecase.GrantStore {
	if rdb != nil {
		return session.NewTwoFactorRedis(rdb, grantKeyPrefix)
	}
	return twofactoradapters.NewGrantGorm(db, logger)
}
