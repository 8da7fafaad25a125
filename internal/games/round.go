// Package games implements the per-game round state machines as pure
// transitions. Persistence and balance effects live in services.
package games

import (
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
)

// Settlement is the single balance effect a terminal round produces.
type Settlement struct {
	Outcome    models.Outcome `json:"outcome"`
	Payout     int64          `json:"payout"`
	Multiplier float64        `json:"multiplier"`
	Balance    int64          `json:"balance"`
}

func (s *Settlement) Profit(bet int64) int64 {
	return s.Payout - bet
}

func loss() *Settlement {
	return &Settlement{Outcome: models.OutcomeLoss}
}

// cashout pays floor(bet*multiplier). Only a payout above the stake is a win;
// an equal one is a push and a smaller one a plain cash-out.
func cashout(bet int64, multiplier float64) *Settlement {
	payout := models.Payout(bet, multiplier)
	var outcome models.Outcome
	switch {
	case payout > bet:
		outcome = models.OutcomeWin
	case payout == bet:
		outcome = models.OutcomePush
	default:
		outcome = models.OutcomeCashout
	}
	return &Settlement{Outcome: outcome, Payout: payout, Multiplier: multiplier}
}

type Fairness struct {
	ServerSeed     string `json:"server_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	Nonce          int64  `json:"nonce"`
	Cursor         int64  `json:"cursor"`
}

func NewFairness(serverSeed, clientSeed string, nonce int64) Fairness {
	return Fairness{
		ServerSeed:     serverSeed,
		ServerSeedHash: fairness.ServerSeedHash(serverSeed),
		ClientSeed:     clientSeed,
		Nonce:          nonce,
	}
}

// Source resumes the round's draw stream at its stored cursor.
func (f *Fairness) Source() *fairness.SeededSource {
	return fairness.NewSeededSource(f.ServerSeed, f.ClientSeed, f.Nonce, f.Cursor)
}

type state interface {
	status() models.RoundStatus
	multiplier() float64
	view(v *models.RoundView, e *fairness.Engine)
}

// Round is the persisted envelope; exactly one game field is set.
type Round struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Game       models.GameType `json:"game"`
	Bet        int64           `json:"bet"`
	CreatedAt  int64           `json:"created_at"`
	SettledAt  int64           `json:"settled_at,omitempty"`
	Fairness   Fairness        `json:"fairness"`
	Settlement *Settlement     `json:"settlement,omitempty"`

	Mines     *Mines       `json:"mines,omitempty"`
	Blackjack *Blackjack   `json:"blackjack,omitempty"`
	Chicken   *ChickenRoad `json:"chicken,omitempty"`
	Coinflip  *Coinflip    `json:"coinflip,omitempty"`

	Version int64 `json:"-"`
}

func (r *Round) state() state {
	switch {
	case r.Mines != nil:
		return r.Mines
	case r.Blackjack != nil:
		return r.Blackjack
	case r.Chicken != nil:
		return r.Chicken
	case r.Coinflip != nil:
		return r.Coinflip
	}
	return nil
}

func (r *Round) Status() models.RoundStatus {
	if s := r.state(); s != nil {
		return s.status()
	}
	return ""
}

func (r *Round) Active() bool {
	return r.Status() == models.StatusActive
}

func (r *Round) Settle(s *Settlement, now int64) {
	r.Settlement = s
	r.SettledAt = now
}

func (r *Round) View(e *fairness.Engine) *models.RoundView {
	v := &models.RoundView{
		ID:        r.ID,
		Game:      r.Game,
		Bet:       r.Bet,
		Status:    r.Status(),
		CreatedAt: r.CreatedAt,
		SettledAt: r.SettledAt,
		Fairness: models.FairnessView{
			ServerSeedHash: r.Fairness.ServerSeedHash,
			ClientSeed:     r.Fairness.ClientSeed,
			Nonce:          r.Fairness.Nonce,
		},
	}

	st := r.state()
	if st == nil {
		return v
	}
	v.Multiplier = st.multiplier()

	if r.Active() {
		v.PotentialPayout = models.Payout(r.Bet, v.Multiplier)
	} else {
		v.Fairness.ServerSeed = r.Fairness.ServerSeed
	}

	if r.Settlement != nil {
		v.PotentialPayout = r.Settlement.Payout
		v.Settlement = &models.SettlementView{
			Outcome: r.Settlement.Outcome,
			Payout:  r.Settlement.Payout,
			Profit:  r.Settlement.Profit(r.Bet),
			Balance: r.Settlement.Balance,
		}
	}

	st.view(v, e)
	return v
}
