package services

import (
	"fmt"
	"time"

	"moon-casino-backend/internal/models"
)

// Key prefixes shared with the Lua scripts in redis_scripts.go.
const (
	PrefixUser        = "user:"
	PrefixTransaction = "transaction:"

	KeyUsernameIndex    = "username:%s"
	KeyEmailIndex       = "email:%s"
	KeyUserTransactions = "user:%s:transactions"
	KeyUserRounds       = "user:%s:rounds"
	KeySession          = "session:%s"
	KeyRound            = "round:%s:%s"
	KeyRoundLock        = "lock:round:%s:%s"
	KeyRateLimit        = "ratelimit:%s:%s"

	KeyLeaderboard = "leaderboard:balance"
	KeyLiveWins    = "feed:wins"
	KeyPresence    = "presence:online"
	KeyMaintenance = "casino:maintenance"
	ChannelEvents  = "casino:events"

	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 100
	LeaderboardLimit        = 100

	TTLRateLimitWindow = time.Minute
)

func userKey(userID string) string {
	return PrefixUser + userID
}

func usernameKey(username string) string {
	return fmt.Sprintf(KeyUsernameIndex, models.NormalizeUsername(username))
}

func emailKey(email string) string {
	return fmt.Sprintf(KeyEmailIndex, models.NormalizeEmail(email))
}

func transactionKey(id string) string {
	return PrefixTransaction + id
}

func roundKey(game models.GameType, userID string) string {
	return fmt.Sprintf(KeyRound, game, userID)
}

func roundLockKey(game models.GameType, userID string) string {
	return fmt.Sprintf(KeyRoundLock, game, userID)
}

func sessionKey(userID string) string {
	return fmt.Sprintf(KeySession, userID)
}
