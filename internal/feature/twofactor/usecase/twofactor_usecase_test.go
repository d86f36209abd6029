package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_backend/internal/feature/twofactor/domain"
	userdomain "account_backend/internal/feature/users/domain"
	userentity "account_backend/internal/feature/users/domain/entity"
	"account_backend/internal/platform/authctx"
)

// mockSecretStore is a mock implementation of SecretStore.
type mockSecretStore struct {
	users        map[uuid.UUID]*userentity.User
	setSecretErr error
}

func (m *mockSecretStore) FindByID(ctx context.Context, id uuid.UUID) (*userentity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockSecretStore) SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error {
	if m.setSecretErr != nil {
		return m.setSecretErr
	}
	u, ok := m.users[id]
	if !ok {
		return userdomain.ErrUserNotFound
	}
	u.TOTPSecret = secret
	return nil
}

// mockGrantStore is a mock implementation of GrantStore.
type mockGrantStore struct {
	grants   map[string]time.Duration
	grantErr error
}

func newMockGrantStore() *mockGrantStore {
	return &mockGrantStore{grants: map[string]time.Duration{}}
}

func (m *mockGrantStore) Grant(ctx context.Context, sessionID string, ttl time.Duration) error {
	if m.grantErr != nil {
		return m.grantErr
	}
	m.grants[sessionID] = ttl
	return nil
}

func (m *mockGrantStore) IsGranted(ctx context.Context, sessionID string) (bool, error) {
	_, ok := m.grants[sessionID]
	return ok, nil
}

func (m *mockGrantStore) Revoke(ctx context.Context, sessionID string) error {
	delete(m.grants, sessionID)
	return nil
}

const testIssuer = "account_backend_test"

func newFixture(t *testing.T) (*TwoFactorUsecase, *mockSecretStore, *mockGrantStore, authctx.Principal) {
	t.Helper()
	id := uuid.New()
	users := &mockSecretStore{users: map[uuid.UUID]*userentity.User{
		id: {ID: id, Username: "alice", Email: "alice@example.com"},
	}}
	grants := newMockGrantStore()
	uc := NewTwoFactorUsecase(users, grants, testIssuer, 10*time.Minute, nil)
	return uc, users, grants, authctx.Principal{UserID: id, SessionID: "sid-1"}
}

func TestTwoFactorUsecase_Setup(t *testing.T) {
	t.Run("success: secret stored and URL returned", func(t *testing.T) {
		uc, users, _, p := newFixture(t)

		enr, err := uc.Setup(context.Background(), p)
		require.NoError(t, err)
		assert.NotEmpty(t, enr.Secret)
		assert.Equal(t, enr.Secret, users.users[p.UserID].TOTPSecret)
		assert.Contains(t, enr.URL, "otpauth://totp/")
		assert.Contains(t, enr.URL, "issuer="+testIssuer)
	})

	t.Run("success: repeated setup rotates the secret", func(t *testing.T) {
		uc, _, _, p := newFixture(t)

		first, err := uc.Setup(context.Background(), p)
		require.NoError(t, err)
		second, err := uc.Setup(context.Background(), p)
		require.NoError(t, err)
		assert.NotEqual(t, first.Secret, second.Secret)
	})

	t.Run("failure: not authenticated", func(t *testing.T) {
		uc, _, _, _ := newFixture(t)
		_, err := uc.Setup(context.Background(), authctx.Principal{})
		assert.ErrorIs(t, err, authctx.ErrNotAuthenticated)
	})

	t.Run("failure: unknown user", func(t *testing.T) {
		uc, _, _, _ := newFixture(t)
		_, err := uc.Setup(context.Background(), authctx.Principal{UserID: uuid.New()})
		assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
	})

	t.Run("failure: secret not stored", func(t *testing.T) {
		uc, users, _, p := newFixture(t)
		users.setSecretErr = errors.New("db down")
		_, err := uc.Setup(context.Background(), p)
		assert.EqualError(t, err, "db down")
	})
}

func TestTwoFactorUsecase_Verify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	enroll := func(t *testing.T) (*TwoFactorUsecase, *mockGrantStore, authctx.Principal, string) {
		uc, _, grants, p := newFixture(t)
		uc.now = func() time.Time { return now }
		enr, err := uc.Setup(context.Background(), p)
		require.NoError(t, err)
		return uc, grants, p, enr.Secret
	}

	t.Run("success: valid code grants the session", func(t *testing.T) {
		uc, grants, p, secret := enroll(t)
		code, err := totp.GenerateCode(secret, now)
		require.NoError(t, err)

		require.NoError(t, uc.Verify(context.Background(), p, code))
		assert.Equal(t, 10*time.Minute, grants.grants["sid-1"])

		ok, err := uc.Status(context.Background(), "sid-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("success: previous step is accepted", func(t *testing.T) {
		uc, _, p, secret := enroll(t)
		code, err := totp.GenerateCode(secret, now.Add(-30*time.Second))
		require.NoError(t, err)
		assert.NoError(t, uc.Verify(context.Background(), p, code))
	})

	t.Run("failure: stale code", func(t *testing.T) {
		uc, grants, p, secret := enroll(t)
		code, err := totp.GenerateCode(secret, now.Add(-5*time.Minute))
		require.NoError(t, err)

		assert.ErrorIs(t, uc.Verify(context.Background(), p, code), domain.ErrInvalidCode)
		assert.Empty(t, grants.grants)
	})

	t.Run("failure: malformed code", func(t *testing.T) {
		uc, _, p, _ := enroll(t)
		assert.ErrorIs(t, uc.Verify(context.Background(), p, "12ab"), domain.ErrInvalidCode)
	})

	t.Run("failure: not enrolled", func(t *testing.T) {
		uc, _, _, p := newFixture(t)
		assert.ErrorIs(t, uc.Verify(context.Background(), p, "123456"), domain.ErrNotEnrolled)
	})

	t.Run("failure: no session", func(t *testing.T) {
		uc, _, p, _ := enroll(t)
		p.SessionID = ""
		assert.ErrorIs(t, uc.Verify(context.Background(), p, "123456"), domain.ErrMissingSession)
	})

	t.Run("failure: not authenticated", func(t *testing.T) {
		uc, _, _, _ := enroll(t)
		assert.ErrorIs(t, uc.Verify(context.Background(), authctx.Principal{}, "123456"), authctx.ErrNotAuthenticated)
	})

	t.Run("failure: grant store error", func(t *testing.T) {
		uc, grants, p, secret := enroll(t)
		grants.grantErr = errors.New("redis down")
		code, err := totp.GenerateCode(secret, now)
		require.NoError(t, err)

		err = uc.Verify(context.Background(), p, code)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to grant 2FA status")
	})
}

func TestTwoFactorUsecase_Status(t *testing.T) {
	uc, _, grants, _ := newFixture(t)
	grants.grants["sid-9"] = time.Minute

	tests := []struct {
		name      string
		sessionID string
		want      bool
	}{
		{"granted session", "sid-9", true},
		{"unknown session", "sid-1", false},
		{"empty session", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Status(context.Background(), tt.sessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
