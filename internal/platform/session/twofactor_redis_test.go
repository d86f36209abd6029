package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_backend/internal/feature/twofactor/domain"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestNewTwoFactorRedis(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewTwoFactorRedis(client, "session")

	assert.NotNil(t, store.client, "client is nil")
	assert.Equal(t, "session", store.prefix)
	assert.Equal(t, "session:2fa:abc", store.grantKey("abc"))
}

func TestTwoFactorRedis_Grant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sessionID string
		ttl       time.Duration
		wantErr   error
	}{
		{name: "success: grant stored", sessionID: "sid-1", ttl: 10 * time.Minute},
		{name: "failure: empty session", sessionID: "", ttl: time.Minute, wantErr: domain.ErrMissingSession},
		{name: "failure: zero ttl", sessionID: "sid-1", ttl: 0, wantErr: domain.ErrInvalidTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, mr := setupTestRedis(t)
			store := NewTwoFactorRedis(client, "session")

			err := store.Grant(context.Background(), tt.sessionID, tt.ttl)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mr.Keys(), "nothing may be written on error")
				return
			}
			require.NoError(t, err)

			val, err := mr.Get("session:2fa:" + tt.sessionID)
			require.NoError(t, err)
			assert.Equal(t, "1", val)
			assert.Equal(t, tt.ttl, mr.TTL("session:2fa:"+tt.sessionID))
		})
	}
}

func TestTwoFactorRedis_IsGranted_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewTwoFactorRedis(client, "session")
	ctx := context.Background()

	granted, err := store.IsGranted(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, store.Grant(ctx, "sid-1", time.Minute))
	granted, err = store.IsGranted(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, granted)

	mr.FastForward(61 * time.Second)
	granted, err = store.IsGranted(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, granted, "grant must expire with its TTL")

	granted, err = store.IsGranted(ctx, "")
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestTwoFactorRedis_Revoke(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewTwoFactorRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, store.Grant(ctx, "sid-1", time.Minute))
	require.NoError(t, store.Grant(ctx, "sid-2", time.Minute))

	require.NoError(t, store.Revoke(ctx, "sid-1"))
	assert.False(t, mr.Exists("session:2fa:sid-1"))
	assert.True(t, mr.Exists("session:2fa:sid-2"), "other sessions keep their grant")

	assert.NoError(t, store.Revoke(ctx, "sid-1"), "revoking twice is fine")
	assert.ErrorIs(t, store.Revoke(ctx, ""), domain.ErrMissingSession)
}

func TestTwoFactorRedis_RedisErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewTwoFactorRedis(db, "session")
	ctx := context.Background()
	redisErr := errors.New("connection refused")

	mock.ExpectSet("session:2fa:sid-1", "1", time.Minute).SetErr(redisErr)
	err := store.Grant(ctx, "sid-1", time.Minute)
	assert.ErrorIs(t, err, redisErr)
	assert.Contains(t, err.Error(), "failed to store 2FA grant")

	mock.ExpectExists("session:2fa:sid-1").SetErr(redisErr)
	granted, err := store.IsGranted(ctx, "sid-1")
	assert.ErrorIs(t, err, redisErr)
	assert.False(t, granted)

	mock.ExpectDel("session:2fa:sid-1").SetErr(redisErr)
	err = store.Revoke(ctx, "sid-1")
	assert.ErrorIs(t, err, redisErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
