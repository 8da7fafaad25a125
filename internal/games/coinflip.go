package games

import (
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
)

type Coinflip struct {
	Bet     int64              `json:"bet"`
	Streak  int                `json:"streak"`
	History []models.FlipEntry `json:"history"`
	Current float64            `json:"multiplier"`
	Status  models.RoundStatus `json:"status"`
}

func NewCoinflip(bet int64) *Coinflip {
	return &Coinflip{
		Bet:     bet,
		History: []models.FlipEntry{},
		Current: 1.0,
		Status:  models.StatusActive,
	}
}

// Accumulated is the value currently in play, zero after a lost flip.
func (c *Coinflip) Accumulated() int64 {
	return models.Payout(c.Bet, c.Current)
}

func (c *Coinflip) Flip(e *fairness.Engine, choice fairness.Side, src fairness.Source) (*Settlement, error) {
	if c.Status != models.StatusActive {
		return nil, models.InvalidTransition("coinflip round is %s", c.Status)
	}

	result := fairness.FlipCoin(src)
	won := result == choice
	c.History = append(c.History, models.FlipEntry{
		Choice: string(choice),
		Result: string(result),
		Won:    won,
	})

	if !won {
		c.Current = 0
		c.Status = models.StatusEnded
		return loss(), nil
	}

	next, err := e.CoinflipMultiplier(c.Streak + 1)
	if err != nil {
		return nil, err
	}
	c.Streak++
	c.Current = next
	return nil, nil
}

// Cashout is allowed at any streak; at zero it returns the stake.
func (c *Coinflip) Cashout() (*Settlement, error) {
	if c.Status != models.StatusActive {
		return nil, models.InvalidTransition("coinflip round is %s", c.Status)
	}
	c.Status = models.StatusEnded
	return cashout(c.Bet, c.Current), nil
}

func (c *Coinflip) status() models.RoundStatus { return c.Status }

func (c *Coinflip) multiplier() float64 { return c.Current }

func (c *Coinflip) view(v *models.RoundView, _ *fairness.Engine) {
	v.Coinflip = &models.CoinflipView{
		Streak:      c.Streak,
		Accumulated: c.Accumulated(),
		History:     append([]models.FlipEntry(nil), c.History...),
	}
}
