package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	userentity "account_backend/internal/feature/users/domain/entity"
)

// GrantStore keeps the per-session 2FA status.
// Implementations live in platform/session (Redis) and twofactor/adapters (GORM).
type GrantStore interface {
	Grant(ctx context.Context, sessionID string, ttl time.Duration) error
	IsGranted(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

// SecretStore reads users and stores their TOTP secret.
type SecretStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
	SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error
}
