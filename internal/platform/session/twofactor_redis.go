// Package session keeps per-session state in Redis.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/feature/twofactor/domain"
	"account_backend/internal/feature/twofactor/usecase"
)

// TwoFactorRedis implements usecase.GrantStore using Redis keys with a TTL.
type TwoFactorRedis struct {
	client redis.Cmdable
	prefix string
}

// Compile-time check to ensure TwoFactorRedis implements GrantStore.
var _ usecase.GrantStore = (*TwoFactorRedis)(nil)

// NewTwoFactorRedis creates a new TwoFactorRedis instance.
func NewTwoFactorRedis(client redis.Cmdable, prefix string) *TwoFactorRedis {
	return &TwoFactorRedis{
		client: client,
		prefix: prefix,
	}
}

// grantKey returns the Redis key for a session's 2FA grant.
func (r *TwoFactorRedis) grantKey(sessionID string) string {
	return fmt.Sprintf("%s:2fa:%s", r.prefix, sessionID)
}

// Grant marks sessionID as 2FA verified for ttl. Redis expires the key.
func (r *TwoFactorRedis) Grant(ctx context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return domain.ErrMissingSession
	}
	if ttl <= 0 {
		return domain.ErrInvalidTTL
	}
	if err := r.client.Set(ctx, r.grantKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store 2FA grant: %w", err)
	}
	return nil
}

// IsGranted reports whether the grant key of sessionID still exists.
func (r *TwoFactorRedis) IsGranted(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.grantKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read 2FA grant: %w", err)
	}
	return n == 1, nil
}

// Revoke deletes the grant of sessionID. A missing key is not an error.
func (r *TwoFactorRedis) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrMissingSession
	}
	if err := r.client.Del(ctx, r.grantKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete 2FA grant: %w", err)
	}
	return nil
}
