// Package usecase implements the business logic for the users feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"account_backend/internal/feature/users/domain"
	"account_backend/internal/feature/users/domain/entity"
	"account_backend/internal/platform/authctx"
)

// dummyHash is compared against when the email is unknown so that login
// takes the same time whether or not the user exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CreateUserInput holds the fields of a new account.
type CreateUserInput struct {
	Username string
	Email    string
	Mobile   string
	Password string
}

// UpdateDetailsInput holds the optional profile changes. Empty strings mean "keep".
type UpdateDetailsInput struct {
	DesiredUsername string
	DesiredEmail    string
}

// UserUsecase implements account creation, login and profile updates.
type UserUsecase struct {
	store     UserStore
	hasher    PasswordHasher
	tokens    TokenGenerator
	twoFactor TwoFactorRevoker
	logger    *slog.Logger
}

// NewUserUsecase wires the usecase. logger may be nil.
func NewUserUsecase(store UserStore, hasher PasswordHasher, tokens TokenGenerator, twoFactor TwoFactorRevoker, logger *slog.Logger) *UserUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserUsecase{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		twoFactor: twoFactor,
		logger:    logger.With("component", "users"),
	}
}

// CreateUser checks username and email uniqueness and inserts the user in one
// transaction, returning the new id. Any failure rolls the transaction back.
func (u *UserUsecase) CreateUser(ctx context.Context, in CreateUserInput) (uuid.UUID, error) {
	if err := validateCreateInput(in); err != nil {
		return uuid.Nil, err
	}

	var created uuid.UUID
	err := u.store.WithinTx(ctx, func(users UserRepository) error {
		exists, err := users.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		u.logger.DebugContext(ctx, "username existence checked", "username", in.Username, "exists", exists)
		if exists {
			return &domain.ConflictError{Field: domain.FieldUsername}
		}

		exists, err = users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		u.logger.DebugContext(ctx, "email existence checked", "email", in.Email, "exists", exists)
		if exists {
			return &domain.ConflictError{Field: domain.FieldEmail}
		}

		hash, err := u.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user := &entity.User{
			ID:           uuid.New(),
			Username:     in.Username,
			Email:        in.Email,
			Mobile:       in.Mobile,
			PasswordHash: hash,
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		created = user.ID
		return nil
	})
	if err != nil {
		u.logger.WarnContext(ctx, "create user rolled back", "username", in.Username, "error", err)
		return uuid.Nil, err
	}

	u.logger.InfoContext(ctx, "user created", "user_id", created)
	return created, nil
}

// Login verifies the credentials and returns an access token for a new session.
// The bcrypt comparison always runs, even for unknown emails.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", err
	}

	hash := dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	compareErr := u.hasher.Compare(hash, password)
	if user == nil || compareErr != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Email, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// UpdateDetails changes the caller's username and/or email. Values equal to
// the current ones are skipped; if nothing is left, nothing is written.
func (u *UserUsecase) UpdateDetails(ctx context.Context, p authctx.Principal, in UpdateDetailsInput) error {
	if !p.Authenticated() {
		return authctx.ErrNotAuthenticated
	}
	if in.DesiredUsername == "" && in.DesiredEmail == "" {
		return nil
	}
	var rules []fieldRule
	if in.DesiredUsername != "" {
		rules = append(rules, fieldRule{domain.FieldUsername, in.DesiredUsername, "max=64"})
	}
	if in.DesiredEmail != "" {
		rules = append(rules, fieldRule{domain.FieldEmail, in.DesiredEmail, "email,max=255"})
	}
	if err := checkFields(rules...); err != nil {
		return err
	}

	err := u.store.WithinTx(ctx, func(users UserRepository) error {
		current, err := users.FindByID(ctx, p.UserID)
		if err != nil {
			return err
		}

		var changes entity.UserChanges
		if in.DesiredUsername != "" && in.DesiredUsername != current.Username {
			exists, err := users.ExistsByUsername(ctx, in.DesiredUsername)
			if err != nil {
				return err
			}
			if exists {
				return &domain.ConflictError{Field: domain.FieldUsername}
			}
			changes.Username = &in.DesiredUsername
		}
		if in.DesiredEmail != "" && in.DesiredEmail != current.Email {
			exists, err := users.ExistsByEmail(ctx, in.DesiredEmail)
			if err != nil {
				return err
			}
			if exists {
				return &domain.ConflictError{Field: domain.FieldEmail}
			}
			changes.Email = &in.DesiredEmail
		}
		if changes.Empty() {
			return nil
		}
		return users.UpdateDetails(ctx, p.UserID, changes)
	})
	if err != nil {
		u.logger.WarnContext(ctx, "update user details failed", "user_id", p.UserID, "error", err)
		return err
	}
	u.logger.InfoContext(ctx, "user details updated", "user_id", p.UserID)
	return nil
}

// UpdatePassword replaces the caller's password. The session must have passed
// 2FA; its 2FA status is cleared once the new password is stored.
func (u *UserUsecase) UpdatePassword(ctx context.Context, p authctx.Principal, desiredPassword string) error {
	if !p.Authenticated() {
		return authctx.ErrNotAuthenticated
	}
	if !p.TwoFactorVerified {
		return domain.ErrTwoFactorRequired
	}
	if err := validateNewPassword(desiredPassword); err != nil {
		return err
	}

	hash, err := u.hasher.Hash(desiredPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.store.UpdatePasswordHash(ctx, p.UserID, hash); err != nil {
		u.logger.ErrorContext(ctx, "password update failed", "user_id", p.UserID, "error", err)
		return err
	}

	// The new hash is already stored, so a failed reset is logged and not returned.
	if u.twoFactor != nil {
		if err := u.twoFactor.Revoke(ctx, p.SessionID); err != nil {
			u.logger.ErrorContext(ctx, "failed to reset 2FA status", "user_id", p.UserID, "session_id", p.SessionID, "error", err)
		}
	}
	u.logger.InfoContext(ctx, "password updated", "user_id", p.UserID)
	return nil
}
