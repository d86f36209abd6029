// Package adapters provides repository implementations for the users feature.
package adapters

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"account_backend/internal/feature/users/domain"
	"account_backend/internal/feature/users/domain/entity"
	"account_backend/internal/feature/users/usecase"
	platformdb "account_backend/internal/platform/db"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm is the GORM implementation of usecase.UserStore.
type userGorm struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Compile-time check to ensure userGorm implements UserStore.
var _ usecase.UserStore = (*userGorm)(nil)

// NewUserGorm creates a user store on top of db. logger may be nil.
func NewUserGorm(db *gorm.DB, logger *slog.Logger) *userGorm {
	if logger == nil {
		logger = slog.Default()
	}
	return &userGorm{db: db, logger: logger}
}

// WithinTx runs fn with a repository bound to one guarded transaction.
func (r *userGorm) WithinTx(ctx context.Context, fn func(users usecase.UserRepository) error) error {
	g, err := platformdb.Begin(ctx, r.db, r.logger)
	if err != nil {
		return &domain.StoreError{Op: "begin", Err: err}
	}
	defer g.Release()

	if err := fn(&userGorm{db: g.DB(), logger: r.logger}); err != nil {
		return err
	}
	if err := g.Commit(); err != nil {
		return &domain.StoreError{Op: "commit", Err: err}
	}
	return nil
}

// ExistsByUsername reports whether a user with username exists.
func (r *userGorm) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "exists_by_username", "username = ?", username)
}

// ExistsByEmail reports whether a user with email exists.
func (r *userGorm) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "exists_by_email", "email = ?", email)
}

func (r *userGorm) exists(ctx context.Context, op, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, &domain.StoreError{Op: op, Err: err}
	}
	return count > 0, nil
}

// Create inserts u, assigning an id if it has none.
// Unique index violations are returned as *domain.ConflictError.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return &domain.ValidationError{Field: "user", Reason: "must not be nil"}
	}
	if u.PasswordHash == "" {
		return &domain.ValidationError{Field: domain.FieldPassword, Reason: "hash must not be empty"}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return translateError("insert", err)
	}
	return nil
}

// FindByID retrieves a user by id, or domain.ErrUserNotFound.
func (r *userGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.first(ctx, "find_by_id", "id = ?", id)
}

// FindByEmail retrieves a user by email, or domain.ErrUserNotFound.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "find_by_email", "email = ?", email)
}

func (r *userGorm) first(ctx context.Context, op, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.StoreError{Op: op, Err: err}
	}
	return &u, nil
}

// UpdateDetails applies the non-nil fields of changes to the user.
func (r *userGorm) UpdateDetails(ctx context.Context, id uuid.UUID, changes entity.UserChanges) error {
	updates := map[string]any{}
	if changes.Username != nil {
		updates["username"] = *changes.Username
	}
	if changes.Email != nil {
		updates["email"] = *changes.Email
	}
	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, "update_details", id, updates)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *userGorm) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	if hash == "" {
		return &domain.ValidationError{Field: domain.FieldPassword, Reason: "hash must not be empty"}
	}
	return r.update(ctx, "update_password", id, map[string]any{"password_hash": hash})
}

// SetTOTPSecret stores the user's TOTP secret.
func (r *userGorm) SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error {
	return r.update(ctx, "set_totp_secret", id, map[string]any{"totp_secret": secret})
}

func (r *userGorm) update(ctx context.Context, op string, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// translateError maps unique violations to ConflictError and everything else to StoreError.
func translateError(op string, err error) error {
	if field, ok := uniqueViolation(err); ok {
		return &domain.ConflictError{Field: field}
	}
	return &domain.StoreError{Op: op, Err: err}
}

// uniqueViolation recognises unique index violations from PostgreSQL (pgx) and
// SQLite, and reports the column involved when it can be told from the error.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return conflictField(pgErr.ConstraintName + " " + pgErr.Detail), true
	}
	msg := err.Error()
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "UNIQUE constraint failed") {
		return conflictField(msg), true
	}
	return "", false
}

func conflictField(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "username"):
		return domain.FieldUsername
	case strings.Contains(s, "email"):
		return domain.FieldEmail
	default:
		return ""
	}
}
