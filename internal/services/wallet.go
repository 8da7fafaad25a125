package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/metrics"
	"moon-casino-backend/internal/models"
)

const dayLayout = "2006-01-02"

// Wallet is the only writer of balances. Each mutation is a single ledger
// script, so a balance is never read into Go and written back.
type Wallet struct {
	redis *RedisService
	cfg   config.WalletConfig
	now   func() time.Time
}

func NewWallet(redis *RedisService, cfg config.WalletConfig) *Wallet {
	return &Wallet{redis: redis, cfg: cfg, now: time.Now}
}

// WithClock replaces the wall clock, for day and cooldown boundaries in tests.
func (w *Wallet) WithClock(now func() time.Time) *Wallet {
	w.now = now
	return w
}

func (w *Wallet) clock() (int64, string) {
	t := w.now()
	return t.UnixMilli(), t.Format(dayLayout)
}

func (w *Wallet) Account(ctx context.Context, userID string) (*models.User, error) {
	return w.redis.GetUser(ctx, userID)
}

func (w *Wallet) Balance(ctx context.Context, userID string) (int64, error) {
	user, err := w.redis.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (w *Wallet) Debit(ctx context.Context, userID string, amount int64, reason models.TransactionType, game models.GameType) (balance int64, err error) {
	defer func() { metrics.RecordWalletOperation("debit", err) }()

	if amount <= 0 {
		return 0, models.InvalidParameter("debit amount must be positive")
	}
	if reason.IsCredit() {
		return 0, models.InvalidParameter("%s is not a debit reason", reason)
	}

	now, _ := w.clock()
	balance, err = debitScript.Run(ctx, w.redis.client, []string{userKey(userID)},
		amount, uuid.New().String(), string(reason), string(game), now,
	).Int64()
	return balance, scriptError(err)
}

// Credit adds coins. A loss carries no coins and only updates bookkeeping,
// so it is the one reason that accepts a zero amount.
func (w *Wallet) Credit(ctx context.Context, userID string, amount int64, reason models.TransactionType, game models.GameType) (balance int64, err error) {
	defer func() { metrics.RecordWalletOperation("credit", err) }()

	switch reason {
	case models.TransactionLoss:
		if amount < 0 {
			return 0, models.InvalidParameter("credit amount must not be negative")
		}
	case models.TransactionWin, models.TransactionPush, models.TransactionFreeCoins:
		if amount <= 0 {
			return 0, models.InvalidParameter("credit amount must be positive")
		}
	default:
		return 0, models.InvalidParameter("%s is not a credit reason", reason)
	}

	now, today := w.clock()
	balance, err = creditScript.Run(ctx, w.redis.client, []string{userKey(userID)},
		amount, uuid.New().String(), string(reason), string(game), now, today,
	).Int64()
	return balance, scriptError(err)
}

func (w *Wallet) RecordWager(ctx context.Context, userID string, amount int64) (err error) {
	defer func() { metrics.RecordWalletOperation("record_wager", err) }()

	if amount <= 0 {
		return models.InvalidParameter("wager amount must be positive")
	}
	now, today := w.clock()
	err = recordWagerScript.Run(ctx, w.redis.client, []string{userKey(userID)}, amount, now, today).Err()
	return scriptError(err)
}

func (w *Wallet) Transfer(ctx context.Context, fromUserID, toUsername string, amount int64) (result *models.TransferResult, err error) {
	defer func() { metrics.RecordWalletOperation("transfer", err) }()

	if amount <= 0 {
		return nil, models.InvalidParameter("transfer amount must be positive")
	}
	if models.NormalizeUsername(toUsername) == "" {
		return nil, models.InvalidParameter("recipient is required")
	}

	tax := models.Tax(amount, w.cfg.TransferTaxRate)
	now, _ := w.clock()

	vals, err := transferScript.Run(ctx, w.redis.client,
		[]string{userKey(fromUserID), usernameKey(toUsername)},
		amount, tax, uuid.New().String(), uuid.New().String(), now,
	).Int64Slice()
	if err != nil {
		return nil, scriptError(err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("unexpected transfer reply: %v", vals)
	}

	return &models.TransferResult{
		Tax:             vals[0],
		RecipientAmount: vals[1],
		SenderBalance:   vals[2],
	}, nil
}

func (w *Wallet) ClaimFreeCoins(ctx context.Context, userID string) (result *models.FreeCoinsResult, err error) {
	defer func() { metrics.RecordWalletOperation("free_coins", err) }()

	now, _ := w.clock()
	vals, err := freeCoinsScript.Run(ctx, w.redis.client, []string{userKey(userID)},
		w.cfg.FreeCoinsAmount,
		w.cfg.FreeCoinsThreshold,
		w.cfg.FreeCoinsCooldown.Milliseconds(),
		uuid.New().String(),
		now,
	).Int64Slice()
	if err != nil {
		return nil, scriptError(err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("unexpected free coins reply: %v", vals)
	}

	return &models.FreeCoinsResult{
		Amount:        w.cfg.FreeCoinsAmount,
		Balance:       vals[0],
		CooldownUntil: vals[1],
	}, nil
}

// PlaceWager is the atomic step from idle to active: no live round for the
// game, stake debited, wager stats and nonce bumped, round stored. The round
// must carry the user's next nonce or the wager fails with ErrUpdateConflict.
func (w *Wallet) PlaceWager(ctx context.Context, round *games.Round) (balance int64, err error) {
	defer func() { metrics.RecordWalletOperation("place_wager", err) }()

	data, err := json.Marshal(round)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal round: %w", err)
	}

	now, today := w.clock()
	balance, err = placeWagerScript.Run(ctx, w.redis.client,
		[]string{userKey(round.UserID), roundKey(round.Game, round.UserID)},
		round.Bet, uuid.New().String(), string(round.Game), round.ID, data, now, today,
		round.Fairness.Nonce,
	).Int64()
	if err != nil {
		return 0, scriptError(err)
	}
	round.Version = 1
	return balance, nil
}

// SettleRound applies a terminal round's settlement exactly once. summary is
// what lands in the player's round history.
func (w *Wallet) SettleRound(ctx context.Context, round *games.Round, summary *models.RoundView) (balance int64, err error) {
	defer func() { metrics.RecordWalletOperation("settle_round", err) }()

	s := round.Settlement
	if s == nil {
		return 0, models.InvalidTransition("round %s has no settlement", round.ID)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal round summary: %w", err)
	}

	now, today := w.clock()
	balance, err = settleRoundScript.Run(ctx, w.redis.client,
		[]string{
			userKey(round.UserID),
			roundKey(round.Game, round.UserID),
			fmt.Sprintf(KeyUserRounds, round.UserID),
		},
		round.ID,
		round.Version,
		string(s.Outcome),
		s.Payout,
		round.Bet,
		string(round.Game),
		uuid.New().String(),
		now,
		today,
		data,
		s.Multiplier,
		w.cfg.BigWinThreshold,
		w.cfg.RoundHistoryLimit,
		w.cfg.LiveWinsLimit,
	).Int64()
	if err != nil {
		return 0, scriptError(err)
	}
	return balance, nil
}

func (w *Wallet) Transactions(ctx context.Context, userID string, limit int64) ([]*models.Transaction, error) {
	return w.redis.GetUserTransactions(ctx, userID, limit)
}

func (w *Wallet) Leaderboard(ctx context.Context, limit int64, username string) (*models.Leaderboard, error) {
	return w.redis.GetLeaderboard(ctx, limit, username)
}

func (w *Wallet) LiveWins(ctx context.Context, limit int64) ([]*models.LiveWin, error) {
	if limit <= 0 || limit > w.cfg.LiveWinsLimit {
		limit = w.cfg.LiveWinsLimit
	}
	return w.redis.GetLiveWins(ctx, limit)
}
