package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	mr      *miniredis.Miniredis
	cfg     *config.Config
	clock   *testClock
	redis   *services.RedisService
	wallet  *services.Wallet
	engine  *services.GameEngine
	session *services.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	clock := &testClock{t: time.Now().Truncate(time.Millisecond)}

	rs := services.NewRedisServiceFromClient(client)
	wallet := services.NewWallet(rs, cfg.Wallet).WithClock(clock.Now)
	engine := services.NewGameEngine(rs, wallet, fairness.NewEngine(cfg.Games), cfg).WithClock(clock.Now)

	jwtService, err := services.NewJWTService(cfg.JWTSecret, cfg.SessionTimeout)
	require.NoError(t, err)
	session := services.NewSessionService(rs, jwtService, cfg).WithClock(clock.Now)

	return &testEnv{
		mr:      mr,
		cfg:     cfg,
		clock:   clock,
		redis:   rs,
		wallet:  wallet,
		engine:  engine,
		session: session,
	}
}

// newUser stores an account directly, skipping bcrypt.
func (e *testEnv) newUser(t *testing.T, username string, balance int64) *models.User {
	t.Helper()

	user := &models.User{
		ID:         uuid.New().String(),
		Username:   username,
		Email:      username + "@example.com",
		Balance:    balance,
		CreatedAt:  e.clock.Now().UnixMilli(),
		ClientSeed: "client-seed-" + username,
	}
	require.NoError(t, e.redis.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := e.wallet.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (e *testEnv) account(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := e.wallet.Account(context.Background(), userID)
	require.NoError(t, err)
	return u
}
