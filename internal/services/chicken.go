package services

import (
	"context"

	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/models"
)

type ChickenGame struct {
	engine *GameEngine
}

func (g *ChickenGame) Type() models.GameType { return models.GameChicken }

func (g *ChickenGame) Start(ctx context.Context, userID string, req models.StartRequest) (*models.RoundView, error) {
	difficulty := fairness.Easy
	if req.Difficulty != "" {
		d, err := fairness.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, err
		}
		difficulty = d
	}

	return g.engine.start(ctx, userID, models.GameChicken, req.Bet, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		r.Chicken = games.NewChickenRoad(req.Bet, difficulty)
		return nil, nil
	})
}

func (g *ChickenGame) Act(ctx context.Context, userID string, req models.ActionRequest) (*models.RoundView, error) {
	if req.Action != "hop" {
		return nil, models.InvalidParameter("chicken does not support %q", req.Action)
	}
	if req.Lane == nil {
		return nil, models.InvalidParameter("lane is required")
	}
	return g.Hop(ctx, userID, *req.Lane)
}

func (g *ChickenGame) Hop(ctx context.Context, userID string, lane int) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameChicken, func(r *games.Round, src fairness.Source) (*games.Settlement, error) {
		return r.Chicken.Hop(g.engine.fairness, lane, src)
	})
}

func (g *ChickenGame) Cashout(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameChicken, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		return r.Chicken.Cashout()
	})
}

func (g *ChickenGame) Current(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.current(ctx, userID, models.GameChicken)
}
