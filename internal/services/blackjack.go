package services

import (
	"context"

	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/models"
)

type BlackjackGame struct {
	engine *GameEngine
}

func (g *BlackjackGame) Type() models.GameType { return models.GameBlackjack }

func (g *BlackjackGame) Start(ctx context.Context, userID string, req models.StartRequest) (*models.RoundView, error) {
	return g.engine.start(ctx, userID, models.GameBlackjack, req.Bet, func(r *games.Round, src fairness.Source) (*games.Settlement, error) {
		b, settlement, err := games.NewBlackjack(req.Bet, fairness.NewDeck(src))
		if err != nil {
			return nil, err
		}
		r.Blackjack = b
		return settlement, nil
	})
}

func (g *BlackjackGame) Act(ctx context.Context, userID string, req models.ActionRequest) (*models.RoundView, error) {
	switch req.Action {
	case "hit":
		return g.Hit(ctx, userID)
	case "stand":
		return g.Stand(ctx, userID)
	}
	return nil, models.InvalidParameter("blackjack does not support %q", req.Action)
}

func (g *BlackjackGame) Hit(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameBlackjack, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		return r.Blackjack.Hit()
	})
}

func (g *BlackjackGame) Stand(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameBlackjack, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		return r.Blackjack.Stand()
	})
}

func (g *BlackjackGame) Cashout(context.Context, string) (*models.RoundView, error) {
	return nil, models.ErrCashoutUnsupported
}

func (g *BlackjackGame) Current(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.current(ctx, userID, models.GameBlackjack)
}
