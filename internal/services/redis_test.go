package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

func TestNewRedisServiceUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.RedisURL = "127.0.0.1:1"

	_, err := services.NewRedisService(cfg)
	assert.Error(t, err)
}

func TestUserLookups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "Lookup", 42)

	byName, err := env.redis.GetUserByUsername(ctx, "LOOKUP")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := env.redis.GetUserByEmail(ctx, "lookup@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = env.redis.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = env.redis.GetUserByUsername(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestRoundLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	release, err := env.redis.AcquireRoundLock(ctx, models.GameMines, "u1", time.Second)
	require.NoError(t, err)

	_, err = env.redis.AcquireRoundLock(ctx, models.GameMines, "u1", time.Second)
	assert.ErrorIs(t, err, models.ErrActionInProgress)

	other, err := env.redis.AcquireRoundLock(ctx, models.GameChicken, "u1", time.Second)
	require.NoError(t, err)
	other()

	release()
	again, err := env.redis.AcquireRoundLock(ctx, models.GameMines, "u1", time.Second)
	require.NoError(t, err)
	again()
}

func TestRoundLockExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale, err := env.redis.AcquireRoundLock(ctx, models.GameMines, "u1", time.Second)
	require.NoError(t, err)

	env.mr.FastForward(2 * time.Second)
	fresh, err := env.redis.AcquireRoundLock(ctx, models.GameMines, "u1", time.Second)
	require.NoError(t, err)

	// releasing the expired holder must not drop the new lock
	stale()
	_, err = env.redis.AcquireRoundLock(ctx, models.GameMines, "u1", time.Second)
	assert.ErrorIs(t, err, models.ErrActionInProgress)
	fresh()
}

func TestCheckRateLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := env.redis.CheckRateLimit(ctx, "u1", "wallet", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := env.redis.CheckRateLimit(ctx, "u1", "wallet", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = env.redis.CheckRateLimit(ctx, "u2", "wallet", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	env.mr.FastForward(time.Minute + time.Second)
	allowed, err = env.redis.CheckRateLimit(ctx, "u1", "wallet", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Greater(t, env.mr.TTL("ratelimit:u1:wallet"), time.Duration(0))
}

func TestCheckRateLimitRepairsMissingExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// a counter stranded without a TTL must not block the user forever
	require.NoError(t, env.mr.Set("ratelimit:u1:start", "99"))
	assert.Equal(t, time.Duration(0), env.mr.TTL("ratelimit:u1:start"))

	allowed, err := env.redis.CheckRateLimit(ctx, "u1", "start", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, env.mr.TTL("ratelimit:u1:start"), time.Duration(0))

	env.mr.FastForward(time.Minute + time.Second)
	allowed, err = env.redis.CheckRateLimit(ctx, "u1", "start", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestOnlineSinceReportsStoreErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, env.redis.MarkOnline(ctx, "fresh", now))
	require.NoError(t, env.redis.MarkOnline(ctx, "stale", now.Add(-time.Minute)))

	names, err := env.redis.OnlineSince(ctx, now.Add(-15*time.Second))
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names)

	env.mr.Close()
	_, err = env.redis.OnlineSince(ctx, now)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestMaintenance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	status, err := env.redis.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.False(t, status.Enabled)

	require.NoError(t, env.redis.SetMaintenance(ctx, models.MaintenanceStatus{
		Enabled: true,
		EndsAt:  12345,
		Message: "upgrading tables",
	}))

	status, err = env.redis.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, int64(12345), status.EndsAt)
	assert.Equal(t, "upgrading tables", status.Message)
}

func TestStoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "offline", 100)

	env.mr.Close()

	_, err := env.wallet.Debit(ctx, user.ID, 10, models.TransactionWager, models.GameMines)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = env.redis.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
