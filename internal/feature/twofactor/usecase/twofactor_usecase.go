// Package usecase implements TOTP enrollment and the per-session 2FA grant.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp/totp"

	"account_backend/internal/feature/twofactor/domain"
	"account_backend/internal/feature/twofactor/domain/entity"
	"account_backend/internal/platform/authctx"
)

// TwoFactorUsecase enrolls users in TOTP and marks sessions as verified.
type TwoFactorUsecase struct {
	users  SecretStore
	grants GrantStore
	issuer string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewTwoFactorUsecase creates a TwoFactorUsecase. Grants last for ttl.
func NewTwoFactorUsecase(users SecretStore, grants GrantStore, issuer string, ttl time.Duration, logger *slog.Logger) *TwoFactorUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TwoFactorUsecase{
		users:  users,
		grants: grants,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With("component", "twofactor"),
	}
}

// Setup generates a new TOTP secret for the caller and stores it.
// Calling it again replaces the previous secret.
func (u *TwoFactorUsecase) Setup(ctx context.Context, p authctx.Principal) (*entity.Enrollment, error) {
	if !p.Authenticated() {
		return nil, authctx.ErrNotAuthenticated
	}
	user, err := u.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      u.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	if err := u.users.SetTOTPSecret(ctx, p.UserID, key.Secret()); err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "2FA secret issued", "user_id", p.UserID)
	return &entity.Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Verify checks code against the caller's secret and grants 2FA to the current session.
func (u *TwoFactorUsecase) Verify(ctx context.Context, p authctx.Principal, code string) error {
	if !p.Authenticated() {
		return authctx.ErrNotAuthenticated
	}
	if p.SessionID == "" {
		return domain.ErrMissingSession
	}
	user, err := u.users.FindByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return domain.ErrNotEnrolled
	}

	valid, err := totp.ValidateCustom(code, user.TOTPSecret, u.now(), totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	if err != nil || !valid {
		u.logger.WarnContext(ctx, "2FA code rejected", "user_id", p.UserID)
		return domain.ErrInvalidCode
	}

	if err := u.grants.Grant(ctx, p.SessionID, u.ttl); err != nil {
		return fmt.Errorf("failed to grant 2FA status: %w", err)
	}
	u.logger.InfoContext(ctx, "2FA verified", "user_id", p.UserID, "session_id", p.SessionID)
	return nil
}

// Status reports whether the session currently holds a 2FA grant.
func (u *TwoFactorUsecase) Status(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return u.grants.IsGranted(ctx, sessionID)
}
