package games

import (
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
)

const (
	blackjack      = 21
	dealerStandsOn = 17
)

type Blackjack struct {
	Bet    int64              `json:"bet"`
	Deck   []models.Card      `json:"deck"`
	Player []models.Card      `json:"player"`
	Dealer []models.Card      `json:"dealer"`
	Status models.RoundStatus `json:"status"`
	Result models.Outcome     `json:"result,omitempty"`
}

// NewBlackjack deals player, dealer (hole card), player, dealer from the top
// of deck. A natural 21 stands immediately and may settle the round.
func NewBlackjack(bet int64, deck []models.Card) (*Blackjack, *Settlement, error) {
	if len(deck) < 4 {
		return nil, nil, models.InvalidParameter("deck has %d cards, need at least 4", len(deck))
	}
	b := &Blackjack{
		Bet:    bet,
		Deck:   append([]models.Card(nil), deck...),
		Player: []models.Card{},
		Dealer: []models.Card{},
		Status: models.StatusActive,
	}
	for i := 0; i < 2; i++ {
		b.Player = append(b.Player, b.draw())
		b.Dealer = append(b.Dealer, b.draw())
	}

	if fairness.ScoreHand(b.Player) == blackjack {
		s, err := b.Stand()
		return b, s, err
	}
	return b, nil, nil
}

func (b *Blackjack) draw() models.Card {
	c := b.Deck[0]
	b.Deck = b.Deck[1:]
	return c
}

func (b *Blackjack) Hit() (*Settlement, error) {
	if b.Status != models.StatusActive {
		return nil, models.InvalidTransition("blackjack hand is %s", b.Status)
	}
	if len(b.Deck) == 0 {
		return nil, models.InvalidTransition("deck exhausted")
	}
	b.Player = append(b.Player, b.draw())
	if fairness.ScoreHand(b.Player) > blackjack {
		return b.finish(models.OutcomeLoss), nil
	}
	return nil, nil
}

// Stand reveals the hole card and draws for the dealer below 17.
func (b *Blackjack) Stand() (*Settlement, error) {
	if b.Status != models.StatusActive {
		return nil, models.InvalidTransition("blackjack hand is %s", b.Status)
	}
	for fairness.ScoreHand(b.Dealer) < dealerStandsOn && len(b.Deck) > 0 {
		b.Dealer = append(b.Dealer, b.draw())
	}
	return b.finish(Judge(fairness.ScoreHand(b.Player), fairness.ScoreHand(b.Dealer))), nil
}

// Judge settles two final scores from the player's side.
func Judge(player, dealer int) models.Outcome {
	switch {
	case player > blackjack:
		return models.OutcomeLoss
	case dealer > blackjack:
		return models.OutcomeWin
	case player > dealer:
		return models.OutcomeWin
	case player < dealer:
		return models.OutcomeLoss
	}
	return models.OutcomePush
}

func (b *Blackjack) finish(o models.Outcome) *Settlement {
	b.Status = models.StatusCompleted
	b.Result = o
	switch o {
	case models.OutcomeWin:
		return &Settlement{Outcome: o, Payout: 2 * b.Bet, Multiplier: 2}
	case models.OutcomePush:
		return &Settlement{Outcome: o, Payout: b.Bet, Multiplier: 1}
	}
	return loss()
}

func (b *Blackjack) status() models.RoundStatus { return b.Status }

func (b *Blackjack) multiplier() float64 {
	switch b.Result {
	case models.OutcomeWin:
		return 2
	case models.OutcomeLoss:
		return 0
	}
	return 1
}

func (b *Blackjack) view(v *models.RoundView, _ *fairness.Engine) {
	bv := &models.BlackjackView{
		PlayerHand:  append([]models.Card(nil), b.Player...),
		PlayerScore: fairness.ScoreHand(b.Player),
		Result:      b.Result,
	}
	if b.Status == models.StatusActive {
		bv.DealerHidden = true
		bv.DealerHand = append([]models.Card{{Rank: "?", Suit: "?"}}, b.Dealer[1:]...)
		bv.DealerScore = fairness.ScoreHand(b.Dealer[1:])
	} else {
		bv.DealerHand = append([]models.Card(nil), b.Dealer...)
		bv.DealerScore = fairness.ScoreHand(b.Dealer)
	}
	v.Blackjack = bv
}
