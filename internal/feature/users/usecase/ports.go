package usecase

import (
	"context"

	"github.com/google/uuid"

	"account_backend/internal/feature/users/domain/entity"
)

// UserRepository abstracts the persistence layer for users.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// ExistsByUsername reports whether any user holds username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether any user holds email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts user. A unique violation is returned as *domain.ConflictError.
	Create(ctx context.Context, user *entity.User) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateDetails applies the non-nil fields of changes.
	UpdateDetails(ctx context.Context, id uuid.UUID, changes entity.UserChanges) error

	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// UserStore is a UserRepository that can also run a unit of work in one transaction.
type UserStore interface {
	UserRepository

	// WithinTx calls fn with a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise;
	// its connection is released in both cases.
	WithinTx(ctx context.Context, fn func(users UserRepository) error) error
}

// PasswordHasher is a slow, salted one-way hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// TokenGenerator issues access tokens on login.
type TokenGenerator interface {
	GenerateToken(userID uuid.UUID, email, sessionID string) (string, error)
}

// TwoFactorRevoker clears the 2FA status of a login session.
type TwoFactorRevoker interface {
	Revoke(ctx context.Context, sessionID string) error
}
