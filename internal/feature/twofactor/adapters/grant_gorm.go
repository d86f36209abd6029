// Package adapters provides the database-backed 2FA grant store.
package adapters

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"account_backend/internal/feature/twofactor/domain"
	"account_backend/internal/feature/twofactor/usecase"
	platformdb "account_backend/internal/platform/db"
)

// grantGorm stores 2FA grants in the relational database. Used when Redis is unavailable.
type grantGorm struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// Compile-time check to ensure grantGorm implements GrantStore.
var _ usecase.GrantStore = (*grantGorm)(nil)

// NewGrantGorm creates a new instance of grantGorm.
func NewGrantGorm(db *gorm.DB, logger *slog.Logger) *grantGorm {
	return &grantGorm{db: db, logger: logger, now: time.Now}
}

// Grant records a grant for sessionID, replacing any earlier one.
// Expired grants of other sessions are pruned in the same transaction.
func (r *grantGorm) Grant(ctx context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return domain.ErrMissingSession
	}
	if ttl <= 0 {
		return domain.ErrInvalidTTL
	}
	now := r.now().UTC()
	model := &GrantModel{SessionID: sessionID, ExpiresAt: now.Add(ttl), CreatedAt: now}

	return platformdb.WithinTx(ctx, r.db, r.logger, func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? OR expires_at <= ?", sessionID, now).Delete(&GrantModel{}).Error; err != nil {
			return err
		}
		return tx.Create(model).Error
	})
}

// IsGranted reports whether sessionID holds an unexpired grant.
func (r *grantGorm) IsGranted(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	var model GrantModel
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return model.ToEntity().Active(r.now()), nil
}

// Revoke removes the grant of sessionID. Revoking a missing grant is not an error.
func (r *grantGorm) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrMissingSession
	}
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&GrantModel{}).Error
}
