package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moon-casino-backend/internal/models"
)

func TestWalletDebit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice", 500)

	t.Run("debits and records a wager", func(t *testing.T) {
		balance, err := env.wallet.Debit(ctx, user.ID, 120, models.TransactionWager, models.GameMines)
		require.NoError(t, err)
		assert.Equal(t, int64(380), balance)

		txs, err := env.wallet.Transactions(ctx, user.ID, 10)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionWager, txs[0].Type)
		assert.Equal(t, int64(120), txs[0].Amount)
		assert.Equal(t, int64(380), txs[0].BalanceAfter)
		assert.Equal(t, models.GameMines, txs[0].Game)
	})

	t.Run("insufficient funds leaves balance untouched", func(t *testing.T) {
		_, err := env.wallet.Debit(ctx, user.ID, 1000, models.TransactionWager, models.GameMines)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		assert.Equal(t, int64(380), env.balance(t, user.ID))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := env.wallet.Debit(ctx, user.ID, 0, models.TransactionWager, "")
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
		_, err = env.wallet.Debit(ctx, user.ID, -5, models.TransactionWager, "")
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.wallet.Debit(ctx, "missing", 10, models.TransactionWager, "")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestWalletDebitIsAtomicUnderContention(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "bob", 500)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.wallet.Debit(ctx, user.ID, 50, models.TransactionWager, models.GameCoinflip); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, int64(0), env.balance(t, user.ID))
}

func TestWalletConcurrentDebitAndCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		user := env.newUser(t, fmt.Sprintf("racer%d", i), 100)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = env.wallet.Debit(ctx, user.ID, 50, models.TransactionWager, models.GameMines)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = env.wallet.Credit(ctx, user.ID, 30, models.TransactionWin, models.GameMines)
		}()
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.Equal(t, int64(80), env.balance(t, user.ID), "iteration %d", i)
	}
}

func TestWalletCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "carol", 100)

	t.Run("win updates stats", func(t *testing.T) {
		balance, err := env.wallet.Credit(ctx, user.ID, 250, models.TransactionWin, models.GameMines)
		require.NoError(t, err)
		assert.Equal(t, int64(350), balance)

		stats := env.account(t, user.ID).Stats
		assert.Equal(t, int64(1), stats.TotalWins)
		assert.Equal(t, int64(250), stats.BiggestWin)
		assert.Equal(t, int64(250), stats.WonToday)
		assert.Equal(t, env.clock.Now().Format("2006-01-02"), stats.WinDay)
	})

	t.Run("biggest win only grows", func(t *testing.T) {
		_, err := env.wallet.Credit(ctx, user.ID, 10, models.TransactionWin, models.GameMines)
		require.NoError(t, err)
		stats := env.account(t, user.ID).Stats
		assert.Equal(t, int64(250), stats.BiggestWin)
		assert.Equal(t, int64(260), stats.WonToday)
	})

	t.Run("won today resets on a new day", func(t *testing.T) {
		env.clock.Advance(24 * time.Hour)
		_, err := env.wallet.Credit(ctx, user.ID, 5, models.TransactionWin, models.GameMines)
		require.NoError(t, err)
		assert.Equal(t, int64(5), env.account(t, user.ID).Stats.WonToday)
	})

	t.Run("loss bookkeeping accepts zero", func(t *testing.T) {
		before := env.balance(t, user.ID)
		balance, err := env.wallet.Credit(ctx, user.ID, 0, models.TransactionLoss, models.GameMines)
		require.NoError(t, err)
		assert.Equal(t, before, balance)
		assert.Equal(t, int64(1), env.account(t, user.ID).Stats.TotalLosses)
	})

	t.Run("push credits without stats", func(t *testing.T) {
		before := env.account(t, user.ID)
		balance, err := env.wallet.Credit(ctx, user.ID, 40, models.TransactionPush, models.GameBlackjack)
		require.NoError(t, err)
		assert.Equal(t, before.Balance+40, balance)
		after := env.account(t, user.ID)
		assert.Equal(t, before.Stats.TotalWins, after.Stats.TotalWins)
		assert.Equal(t, before.Stats.TotalLosses, after.Stats.TotalLosses)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := env.wallet.Credit(ctx, user.ID, 0, models.TransactionWin, models.GameMines)
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
		_, err = env.wallet.Credit(ctx, user.ID, 10, models.TransactionWager, models.GameMines)
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
	})
}

func TestWalletRecordWager(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "dave", 100)

	require.NoError(t, env.wallet.RecordWager(ctx, user.ID, 10))
	env.clock.Advance(24 * time.Hour)
	require.NoError(t, env.wallet.RecordWager(ctx, user.ID, 5))

	stats := env.account(t, user.ID).Stats
	assert.Equal(t, int64(5), stats.WageredToday)
	assert.Equal(t, int64(15), stats.WageredWeek)
	assert.Equal(t, int64(15), stats.WageredLifetime)

	env.clock.Advance(8 * 24 * time.Hour)
	require.NoError(t, env.wallet.RecordWager(ctx, user.ID, 7))

	stats = env.account(t, user.ID).Stats
	assert.Equal(t, int64(7), stats.WageredToday)
	assert.Equal(t, int64(7), stats.WageredWeek)
	assert.Equal(t, int64(22), stats.WageredLifetime)
	assert.Equal(t, int64(100), env.balance(t, user.ID))
}

func TestWalletTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sender := env.newUser(t, "sender", 2000)
	recipient := env.newUser(t, "Recipient", 0)

	t.Run("applies tax", func(t *testing.T) {
		result, err := env.wallet.Transfer(ctx, sender.ID, "recipient", 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(100), result.Tax)
		assert.Equal(t, int64(900), result.RecipientAmount)
		assert.Equal(t, int64(1000), result.SenderBalance)
		assert.Equal(t, int64(900), env.balance(t, recipient.ID))

		sent, err := env.wallet.Transactions(ctx, sender.ID, 10)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, models.TransactionTransferSent, sent[0].Type)
		assert.Equal(t, "Recipient", sent[0].Counterparty)

		received, err := env.wallet.Transactions(ctx, recipient.ID, 10)
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, models.TransactionTransferReceived, received[0].Type)
		assert.Equal(t, int64(900), received[0].Amount)
	})

	t.Run("tax rounds down", func(t *testing.T) {
		result, err := env.wallet.Transfer(ctx, sender.ID, "recipient", 15)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Tax)
		assert.Equal(t, int64(14), result.RecipientAmount)
	})

	t.Run("unknown recipient leaves sender untouched", func(t *testing.T) {
		before := env.balance(t, sender.ID)
		_, err := env.wallet.Transfer(ctx, sender.ID, "nobody", 10)
		assert.ErrorIs(t, err, models.ErrRecipientNotFound)
		assert.Equal(t, before, env.balance(t, sender.ID))
	})

	t.Run("self transfer is an invalid parameter", func(t *testing.T) {
		_, err := env.wallet.Transfer(ctx, sender.ID, "SENDER", 10)
		assert.ErrorIs(t, err, models.ErrSelfTransfer)
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := env.wallet.Transfer(ctx, recipient.ID, "sender", 100000)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := env.wallet.Transfer(ctx, sender.ID, "recipient", 0)
		assert.ErrorIs(t, err, models.ErrInvalidParameter)
	})
}

func TestWalletClaimFreeCoins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rich := env.newUser(t, "rich", 100)
	poor := env.newUser(t, "poor", 99)

	_, err := env.wallet.ClaimFreeCoins(ctx, rich.ID)
	assert.ErrorIs(t, err, models.ErrBalanceTooHigh)

	result, err := env.wallet.ClaimFreeCoins(ctx, poor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Amount)
	assert.Equal(t, int64(599), result.Balance)
	assert.Equal(t, env.clock.Now().Add(time.Hour).UnixMilli(), result.CooldownUntil)

	_, err = env.wallet.Debit(ctx, poor.ID, 550, models.TransactionWager, models.GameMines)
	require.NoError(t, err)

	env.clock.Advance(30 * time.Minute)
	_, err = env.wallet.ClaimFreeCoins(ctx, poor.ID)
	assert.ErrorIs(t, err, models.ErrCooldownActive)

	env.clock.Advance(31 * time.Minute)
	result, err = env.wallet.ClaimFreeCoins(ctx, poor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(549), result.Balance)

	fc := env.account(t, poor.ID).FreeCoins
	assert.Equal(t, env.clock.Now().UnixMilli(), fc.LastClaim)
}

func TestWalletLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newUser(t, "low", 10)
	env.newUser(t, "mid", 500)
	top := env.newUser(t, "top", 900)

	board, err := env.wallet.Leaderboard(ctx, 10, "mid")
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, "top", board.Entries[0].Username)
	assert.Equal(t, int64(1), board.Entries[0].Rank)
	assert.Equal(t, "low", board.Entries[2].Username)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, int64(2), board.UserRank.Rank)

	_, err = env.wallet.Debit(ctx, top.ID, 800, models.TransactionWager, models.GameMines)
	require.NoError(t, err)

	board, err = env.wallet.Leaderboard(ctx, 10, "")
	require.NoError(t, err)
	assert.Equal(t, "mid", board.Entries[0].Username)
	assert.Nil(t, board.UserRank)
}

func TestWalletTransactionsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "erin", 500)

	for i := 1; i <= 3; i++ {
		_, err := env.wallet.Debit(ctx, user.ID, int64(i), models.TransactionWager, models.GameCoinflip)
		require.NoError(t, err)
		env.clock.Advance(time.Second)
	}

	txs, err := env.wallet.Transactions(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(3), txs[0].Amount)
	assert.Equal(t, int64(2), txs[1].Amount)
}
