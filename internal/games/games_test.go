package games

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
)

// scripted replays fixed draws in order.
type scripted struct {
	draws []float64
	next  int
}

func (s *scripted) Float64() float64 {
	f := s.draws[s.next]
	s.next++
	return f
}

func (s *scripted) Intn(n int) int {
	return int(s.Float64() * float64(n))
}

func newEngine() *fairness.Engine {
	return fairness.NewEngine(config.Default().Games)
}

func minesWith(bet int64, mines ...int) *Mines {
	grid := make([]bool, fairness.MinesBoardSize)
	for _, i := range mines {
		grid[i] = true
	}
	return &Mines{
		Bet:        bet,
		MinesCount: len(mines),
		Grid:       grid,
		Revealed:   []int{},
		Status:     models.StatusActive,
		Current:    1.0,
	}
}

func cards(ranks ...string) []models.Card {
	out := make([]models.Card, len(ranks))
	suits := []string{"♠", "♥", "♦", "♣"}
	for i, r := range ranks {
		out[i] = models.Card{Rank: r, Suit: suits[i%4]}
	}
	return out
}

func TestMinesRevealSafeThenCashout(t *testing.T) {
	e := newEngine()
	m := minesWith(100, 0, 1, 2)

	s, err := m.Reveal(e, 10)
	require.NoError(t, err)
	assert.Nil(t, s)

	want, _ := e.MineMultiplier(3, 1)
	assert.Equal(t, want, m.Current)

	s, err = m.Reveal(e, 11)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = m.Cashout()
	require.NoError(t, err)
	want, _ = e.MineMultiplier(3, 2)
	assert.Equal(t, models.OutcomeWin, s.Outcome)
	assert.Equal(t, models.Payout(100, want), s.Payout)
	assert.Equal(t, models.StatusCashedOut, m.Status)
}

func TestMinesRevealIsIdempotent(t *testing.T) {
	e := newEngine()
	m := minesWith(100, 0)

	_, err := m.Reveal(e, 5)
	require.NoError(t, err)
	before := m.Current

	s, err := m.Reveal(e, 5)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, []int{5}, m.Revealed)
	assert.Equal(t, before, m.Current)
}

func TestMinesHitLosesBet(t *testing.T) {
	e := newEngine()
	m := minesWith(100, 7)

	s, err := m.Reveal(e, 7)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, models.OutcomeLoss, s.Outcome)
	assert.Zero(t, s.Payout)
	assert.Equal(t, models.StatusLost, m.Status)

	_, err = m.Reveal(e, 8)
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
	_, err = m.Cashout()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestMinesCashoutBeforeRevealRejected(t *testing.T) {
	m := minesWith(100, 3)
	_, err := m.Cashout()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
	assert.Equal(t, models.StatusActive, m.Status)
}

func TestMinesRevealOutOfRange(t *testing.T) {
	m := minesWith(100, 3)
	_, err := m.Reveal(newEngine(), 25)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	_, err = m.Reveal(newEngine(), -1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestMinesFullClearAutoCashout(t *testing.T) {
	e := newEngine()
	mines := make([]int, 0, 22)
	for i := 3; i < 25; i++ {
		mines = append(mines, i)
	}
	m := minesWith(10, mines...)

	for _, i := range []int{0, 1} {
		s, err := m.Reveal(e, i)
		require.NoError(t, err)
		assert.Nil(t, s)
	}
	s, err := m.Reveal(e, 2)
	require.NoError(t, err)
	require.NotNil(t, s)

	full, _ := e.MineMultiplier(22, 3)
	assert.Equal(t, models.OutcomeWin, s.Outcome)
	assert.Equal(t, models.Payout(10, full), s.Payout)
	assert.Equal(t, models.StatusCashedOut, m.Status)
}

func TestNewMinesPlacesRequestedCount(t *testing.T) {
	m, err := NewMines(50, 5, fairness.NewSeededSource("a", "b", 1, 0))
	require.NoError(t, err)
	count := 0
	for _, mine := range m.Grid {
		if mine {
			count++
		}
	}
	assert.Equal(t, 5, count)
	assert.Equal(t, 20, m.SafeCells())
}

func TestBlackjackDealOrder(t *testing.T) {
	b, s, err := NewBlackjack(100, cards("10", "9", "6", "8", "2"))
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, cards("10", "9", "6", "8")[0], b.Player[0])
	assert.Equal(t, "6", b.Player[1].Rank)
	assert.Equal(t, "9", b.Dealer[0].Rank)
	assert.Equal(t, "8", b.Dealer[1].Rank)
	assert.Len(t, b.Deck, 1)
}

func TestBlackjackDealerStandsOnEighteen(t *testing.T) {
	b, _, err := NewBlackjack(100, cards("10", "9", "6", "9", "3"))
	require.NoError(t, err)

	s, err := b.Stand()
	require.NoError(t, err)
	assert.Len(t, b.Dealer, 2)
	assert.Equal(t, 18, fairness.ScoreHand(b.Dealer))
	assert.Equal(t, models.OutcomeLoss, s.Outcome)
	assert.Zero(t, s.Payout)
}

func TestBlackjackDealerDrawsToTwentyOne(t *testing.T) {
	// player 10+7, dealer 9+2 draws K -> 21
	b, _, err := NewBlackjack(100, cards("10", "9", "7", "2", "K"))
	require.NoError(t, err)

	s, err := b.Stand()
	require.NoError(t, err)
	assert.Equal(t, 21, fairness.ScoreHand(b.Dealer))
	assert.Equal(t, models.OutcomeLoss, s.Outcome)
}

func TestBlackjackPushRefundsBet(t *testing.T) {
	b, _, err := NewBlackjack(100, cards("10", "9", "8", "9"))
	require.NoError(t, err)

	s, err := b.Stand()
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePush, s.Outcome)
	assert.Equal(t, int64(100), s.Payout)
	assert.Equal(t, int64(0), s.Profit(100))
}

func TestBlackjackPlayerBusts(t *testing.T) {
	b, _, err := NewBlackjack(100, cards("10", "9", "6", "9", "K"))
	require.NoError(t, err)

	s, err := b.Hit()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, models.OutcomeLoss, s.Outcome)
	assert.Equal(t, models.StatusCompleted, b.Status)

	_, err = b.Hit()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
	_, err = b.Stand()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestBlackjackDealerBustPaysDouble(t *testing.T) {
	b, _, err := NewBlackjack(100, cards("10", "10", "8", "6", "Q"))
	require.NoError(t, err)

	s, err := b.Stand()
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWin, s.Outcome)
	assert.Equal(t, int64(200), s.Payout)
}

func TestBlackjackNaturalAutoStands(t *testing.T) {
	b, s, err := NewBlackjack(100, cards("A", "9", "K", "9"))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, models.OutcomeWin, s.Outcome)
	assert.Equal(t, models.StatusCompleted, b.Status)
}

func TestBlackjackHitAfterStandRejected(t *testing.T) {
	b, _, err := NewBlackjack(100, cards("10", "9", "8", "9", "2"))
	require.NoError(t, err)
	_, err = b.Stand()
	require.NoError(t, err)

	_, err = b.Hit()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestJudge(t *testing.T) {
	assert.Equal(t, models.OutcomeLoss, Judge(22, 22))
	assert.Equal(t, models.OutcomeWin, Judge(20, 22))
	assert.Equal(t, models.OutcomeWin, Judge(20, 19))
	assert.Equal(t, models.OutcomeLoss, Judge(17, 21))
	assert.Equal(t, models.OutcomePush, Judge(18, 18))
}

func TestChickenHopSequence(t *testing.T) {
	e := newEngine()
	c := NewChickenRoad(100, fairness.Easy)

	_, err := c.Hop(e, 1, &scripted{draws: []float64{0}})
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)

	_, err = c.Cashout()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)

	s, err := c.Hop(e, 0, &scripted{draws: []float64{0.1}})
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 0, c.CurrentStep)
	assert.InDelta(t, 1.02*1.06, c.Current, 1e-12)

	s, err = c.Cashout()
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWin, s.Outcome)
	assert.Equal(t, models.Payout(100, 1.02*1.06), s.Payout)
}

func TestChickenCrashLosesBet(t *testing.T) {
	e := newEngine()
	c := NewChickenRoad(100, fairness.Easy)

	s, err := c.Hop(e, 0, &scripted{draws: []float64{0.85}})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, models.OutcomeLoss, s.Outcome)
	assert.Equal(t, models.StatusCrashed, c.Status)
	assert.Zero(t, s.Payout)
}

func TestChickenLastLaneAutoCashout(t *testing.T) {
	e := newEngine()
	c := NewChickenRoad(10, fairness.Hard)
	c.CurrentStep = 28

	s, err := c.Hop(e, 29, &scripted{draws: []float64{0.01}})
	require.NoError(t, err)
	require.NotNil(t, s)

	table, _ := e.ChickenTable(fairness.Hard)
	assert.Equal(t, models.Payout(10, table[29]), s.Payout)
	assert.Equal(t, models.StatusCashedOut, c.Status)
}

func TestCoinflipStreakAndCashout(t *testing.T) {
	e := newEngine()
	c := NewCoinflip(100)

	s, err := c.Flip(e, fairness.Heads, &scripted{draws: []float64{0.2}})
	require.NoError(t, err)
	assert.Nil(t, s)
	s, err = c.Flip(e, fairness.Tails, &scripted{draws: []float64{0.7}})
	require.NoError(t, err)
	assert.Nil(t, s)

	assert.Equal(t, 2, c.Streak)
	assert.Equal(t, models.Payout(100, 1.85*1.85), c.Accumulated())

	s, err = c.Cashout()
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWin, s.Outcome)
	assert.Equal(t, int64(342), s.Payout)
}

func TestCoinflipLossZeroesValue(t *testing.T) {
	e := newEngine()
	c := NewCoinflip(100)

	s, err := c.Flip(e, fairness.Heads, &scripted{draws: []float64{0.9}})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, models.OutcomeLoss, s.Outcome)
	assert.Zero(t, c.Accumulated())

	_, err = c.Cashout()
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
}

func TestCoinflipCashoutAtZeroStreakIsRefund(t *testing.T) {
	c := NewCoinflip(100)
	s, err := c.Cashout()
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePush, s.Outcome)
	assert.Equal(t, int64(100), s.Payout)
}

func TestRoundViewHidesSecretsWhileActive(t *testing.T) {
	e := newEngine()
	r := &Round{
		ID:       "r1",
		Game:     models.GameMines,
		Bet:      100,
		Fairness: NewFairness("server-seed", "client", 4),
		Mines:    minesWith(100, 0, 1),
	}

	v := r.View(e)
	assert.Empty(t, v.Fairness.ServerSeed)
	assert.Equal(t, fairness.ServerSeedHash("server-seed"), v.Fairness.ServerSeedHash)
	assert.Nil(t, v.Mines.Grid)
	assert.Equal(t, int64(100), v.PotentialPayout)

	s, err := r.Mines.Reveal(e, 0)
	require.NoError(t, err)
	r.Settle(s, 1)

	v = r.View(e)
	assert.Equal(t, "server-seed", v.Fairness.ServerSeed)
	require.Len(t, v.Mines.Grid, 25)
	assert.Equal(t, "mine", v.Mines.Grid[0])
	assert.Equal(t, models.OutcomeLoss, v.Settlement.Outcome)
	assert.Equal(t, int64(-100), v.Settlement.Profit)
}

func TestBlackjackViewHidesHoleCard(t *testing.T) {
	b, _, err := NewBlackjack(100, cards("10", "9", "6", "8"))
	require.NoError(t, err)
	r := &Round{Game: models.GameBlackjack, Bet: 100, Blackjack: b}

	v := r.View(newEngine())
	require.Len(t, v.Blackjack.DealerHand, 2)
	assert.Equal(t, "?", v.Blackjack.DealerHand[0].Rank)
	assert.Equal(t, 8, v.Blackjack.DealerScore)
	assert.True(t, v.Blackjack.DealerHidden)
}

func TestRoundSurvivesJSON(t *testing.T) {
	e := newEngine()
	r := &Round{
		ID:       "r2",
		Game:     models.GameChicken,
		Bet:      20,
		Fairness: NewFairness("s", "c", 1),
		Chicken:  NewChickenRoad(20, fairness.Medium),
	}
	_, err := r.Chicken.Hop(e, 0, &scripted{draws: []float64{0}})
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Round
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Chicken, back.Chicken)
	assert.True(t, back.Active())
	assert.Nil(t, back.Mines)
}

func TestChickenEasyFirstHopRate(t *testing.T) {
	const trials = 100_000
	e := newEngine()
	src := fairness.NewSeededSource("distribution", "check", 0, 0)

	survived := 0
	for i := 0; i < trials; i++ {
		c := NewChickenRoad(10, fairness.Easy)
		s, err := c.Hop(e, 0, src)
		require.NoError(t, err)
		if s == nil {
			survived++
			assert.Equal(t, 0, c.CurrentStep)
		} else {
			assert.Equal(t, models.StatusCrashed, c.Status)
		}
	}

	assert.InDelta(t, 0.85, float64(survived)/trials, 0.005)
}

func TestCashoutOutcomeFollowsProfit(t *testing.T) {
	e := newEngine()

	t.Run("below stake is a plain cashout", func(t *testing.T) {
		m := minesWith(100, 0)
		_, err := m.Reveal(e, 1)
		require.NoError(t, err)

		s, err := m.Cashout()
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeCashout, s.Outcome)
		assert.Equal(t, int64(98), s.Payout)
		assert.Equal(t, int64(-2), s.Profit(100))
	})

	t.Run("above stake is a win", func(t *testing.T) {
		s := cashout(100, 1.5)
		assert.Equal(t, models.OutcomeWin, s.Outcome)
		assert.Equal(t, int64(150), s.Payout)
	})

	t.Run("equal to stake is a push", func(t *testing.T) {
		s := cashout(100, 1.0)
		assert.Equal(t, models.OutcomePush, s.Outcome)
	})
}
