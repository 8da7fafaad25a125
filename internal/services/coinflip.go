package services

import (
	"context"

	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/models"
)

type CoinflipGame struct {
	engine *GameEngine
}

func (g *CoinflipGame) Type() models.GameType { return models.GameCoinflip }

func (g *CoinflipGame) Start(ctx context.Context, userID string, req models.StartRequest) (*models.RoundView, error) {
	return g.engine.start(ctx, userID, models.GameCoinflip, req.Bet, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		r.Coinflip = games.NewCoinflip(req.Bet)
		return nil, nil
	})
}

func (g *CoinflipGame) Act(ctx context.Context, userID string, req models.ActionRequest) (*models.RoundView, error) {
	if req.Action != "flip" {
		return nil, models.InvalidParameter("coinflip does not support %q", req.Action)
	}
	return g.Flip(ctx, userID, req.Choice)
}

func (g *CoinflipGame) Flip(ctx context.Context, userID, choice string) (*models.RoundView, error) {
	side, err := fairness.ParseSide(choice)
	if err != nil {
		return nil, err
	}
	return g.engine.act(ctx, userID, models.GameCoinflip, func(r *games.Round, src fairness.Source) (*games.Settlement, error) {
		return r.Coinflip.Flip(g.engine.fairness, side, src)
	})
}

func (g *CoinflipGame) Cashout(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameCoinflip, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		return r.Coinflip.Cashout()
	})
}

func (g *CoinflipGame) Current(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.current(ctx, userID, models.GameCoinflip)
}
