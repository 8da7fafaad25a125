package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/models"
)

// RedisService is the Ledger Store client. Reads go straight to Redis;
// multi-key writes go through the Lua scripts in redis_scripts.go.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

func NewRedisServiceFromClient(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

func (s *RedisService) Client() *redis.Client {
	return s.client
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *RedisService) CreateUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	keys := []string{usernameKey(user.Username), emailKey(user.Email), userKey(user.ID)}
	err = createUserScript.Run(ctx, s.client, keys, user.ID, data, user.Balance, user.Username).Err()
	return scriptError(err)
}

func (s *RedisService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, storeError(err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (s *RedisService) lookupIndex(ctx context.Context, key string) (string, error) {
	id, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", models.ErrUserNotFound
	}
	if err != nil {
		return "", storeError(err)
	}
	return id, nil
}

func (s *RedisService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := s.lookupIndex(ctx, usernameKey(username))
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *RedisService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := s.lookupIndex(ctx, emailKey(email))
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *RedisService) SetClientSeed(ctx context.Context, userID, seed string) error {
	return scriptError(setClientSeedScript.Run(ctx, s.client, []string{userKey(userID)}, seed).Err())
}

func (s *RedisService) GetUserTransactions(ctx context.Context, userID string, limit int64) ([]*models.Transaction, error) {
	if limit <= 0 || limit > MaxTransactionLimit {
		limit = DefaultTransactionLimit
	}

	txIDs, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserTransactions, userID), 0, limit-1).Result()
	if err != nil {
		return nil, storeError(err)
	}
	if len(txIDs) == 0 {
		return []*models.Transaction{}, nil
	}

	keys := make([]string, len(txIDs))
	for i, id := range txIDs {
		keys[i] = transactionKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeError(err)
	}

	transactions := make([]*models.Transaction, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var tx models.Transaction
		if err := json.Unmarshal([]byte(raw), &tx); err != nil {
			continue
		}
		transactions = append(transactions, &tx)
	}
	return transactions, nil
}

func (s *RedisService) GetLeaderboard(ctx context.Context, limit int64, username string) (*models.Leaderboard, error) {
	if limit <= 0 || limit > LeaderboardLimit {
		limit = LeaderboardLimit
	}

	entries, err := s.client.ZRevRangeWithScores(ctx, KeyLeaderboard, 0, limit-1).Result()
	if err != nil {
		return nil, storeError(err)
	}

	board := &models.Leaderboard{Entries: make([]models.LeaderboardEntry, 0, len(entries))}
	for i, z := range entries {
		name, _ := z.Member.(string)
		board.Entries = append(board.Entries, models.LeaderboardEntry{
			Rank:     int64(i + 1),
			Username: name,
			Balance:  int64(z.Score),
		})
	}

	if username == "" {
		return board, nil
	}

	rank, err := s.client.ZRevRank(ctx, KeyLeaderboard, username).Result()
	if errors.Is(err, redis.Nil) {
		return board, nil
	}
	if err != nil {
		return nil, storeError(err)
	}
	score, err := s.client.ZScore(ctx, KeyLeaderboard, username).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, storeError(err)
	}
	board.UserRank = &models.LeaderboardEntry{Rank: rank + 1, Username: username, Balance: int64(score)}
	return board, nil
}

func (s *RedisService) GetLiveWins(ctx context.Context, limit int64) ([]*models.LiveWin, error) {
	raw, err := s.client.LRange(ctx, KeyLiveWins, 0, limit-1).Result()
	if err != nil {
		return nil, storeError(err)
	}
	wins := make([]*models.LiveWin, 0, len(raw))
	for _, r := range raw {
		var w models.LiveWin
		if err := json.Unmarshal([]byte(r), &w); err != nil {
			continue
		}
		wins = append(wins, &w)
	}
	return wins, nil
}

func (s *RedisService) GetRoundHistory(ctx context.Context, userID string, limit int64) ([]*models.RoundView, error) {
	if limit <= 0 || limit > MaxTransactionLimit {
		limit = DefaultTransactionLimit
	}
	raw, err := s.client.LRange(ctx, fmt.Sprintf(KeyUserRounds, userID), 0, limit-1).Result()
	if err != nil {
		return nil, storeError(err)
	}
	rounds := make([]*models.RoundView, 0, len(raw))
	for _, r := range raw {
		var v models.RoundView
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			continue
		}
		rounds = append(rounds, &v)
	}
	return rounds, nil
}

type roundRecord struct {
	ID      string `redis:"id"`
	Data    string `redis:"data"`
	Version int64  `redis:"version"`
}

func (s *RedisService) LoadRound(ctx context.Context, game models.GameType, userID string) (*games.Round, error) {
	var rec roundRecord
	if err := s.client.HGetAll(ctx, roundKey(game, userID)).Scan(&rec); err != nil {
		return nil, storeError(err)
	}
	if rec.ID == "" {
		return nil, models.ErrRoundNotFound
	}

	var round games.Round
	if err := json.Unmarshal([]byte(rec.Data), &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round %s: %w", rec.ID, err)
	}
	round.Version = rec.Version
	return &round, nil
}

// SaveRound writes an in-progress round if nobody else bumped its version.
func (s *RedisService) SaveRound(ctx context.Context, round *games.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	version, err := saveRoundScript.Run(ctx, s.client,
		[]string{roundKey(round.Game, round.UserID)},
		round.ID, round.Version, data,
	).Int64()
	if err != nil {
		return scriptError(err)
	}
	round.Version = version
	return nil
}

// AcquireRoundLock serialises actions on one (game, user) round. The returned
// release func is safe to call once the action finishes.
func (s *RedisService) AcquireRoundLock(ctx context.Context, game models.GameType, userID string, ttl time.Duration) (func(), error) {
	key := roundLockKey(game, userID)
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, storeError(err)
	}
	if !ok {
		return nil, models.ErrActionInProgress
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		releaseLockScript.Run(releaseCtx, s.client, []string{key}, token)
	}, nil
}

func (s *RedisService) CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := rateLimitScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, storeError(err)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) GetMaintenance(ctx context.Context) (*models.MaintenanceStatus, error) {
	var status models.MaintenanceStatus
	if err := s.client.HGetAll(ctx, KeyMaintenance).Scan(&status); err != nil {
		return nil, storeError(err)
	}
	return &status, nil
}

func (s *RedisService) SetMaintenance(ctx context.Context, status models.MaintenanceStatus) error {
	err := s.client.HSet(ctx, KeyMaintenance,
		"enabled", status.Enabled,
		"ends_at", status.EndsAt,
		"message", status.Message,
	).Err()
	if err != nil {
		return storeError(err)
	}
	return nil
}

func (s *RedisService) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	key := sessionKey(session.UserID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, session)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *RedisService) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	var session models.Session
	if err := s.client.HGetAll(ctx, sessionKey(userID)).Scan(&session); err != nil {
		return nil, storeError(err)
	}
	if session.SessionID == "" {
		return nil, models.ErrSessionInvalid
	}
	return &session, nil
}

func (s *RedisService) TouchSession(ctx context.Context, userID string, now time.Time) error {
	key := sessionKey(userID)
	// HSET on a missing key would resurrect an expired session.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return storeError(err)
	}
	if exists == 0 {
		return models.ErrSessionInvalid
	}
	if err := s.client.HSet(ctx, key, "last_activity", now.UnixMilli()).Err(); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *RedisService) DeleteSession(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *RedisService) MarkOnline(ctx context.Context, username string, now time.Time) error {
	err := s.client.ZAdd(ctx, KeyPresence, redis.Z{Score: float64(now.UnixMilli()), Member: username}).Err()
	if err != nil {
		return storeError(err)
	}
	return nil
}

func (s *RedisService) MarkOffline(ctx context.Context, username string) error {
	if err := s.client.ZRem(ctx, KeyPresence, username).Err(); err != nil {
		return storeError(err)
	}
	return nil
}

// OnlineSince lists usernames seen at or after since and prunes the rest.
func (s *RedisService) OnlineSince(ctx context.Context, since time.Time) ([]string, error) {
	cutoff := since.UnixMilli()
	if err := s.client.ZRemRangeByScore(ctx, KeyPresence, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return nil, storeError(err)
	}

	names, err := s.client.ZRangeByScore(ctx, KeyPresence, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, storeError(err)
	}
	return names, nil
}

func (s *RedisService) LastSeen(ctx context.Context, username string) (int64, error) {
	score, err := s.client.ZScore(ctx, KeyPresence, username).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, storeError(err)
	}
	return int64(score), nil
}

func (s *RedisService) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, ChannelEvents)
}
