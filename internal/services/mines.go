package services

import (
	"context"

	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/models"
)

const defaultMinesCount = 3

type MinesGame struct {
	engine *GameEngine
}

func (g *MinesGame) Type() models.GameType { return models.GameMines }

func (g *MinesGame) Start(ctx context.Context, userID string, req models.StartRequest) (*models.RoundView, error) {
	count := req.MinesCount
	if count == 0 {
		count = defaultMinesCount
	}
	if count < 1 || count >= fairness.MinesBoardSize {
		return nil, models.InvalidParameter("mines count must be between 1 and %d", fairness.MinesBoardSize-1)
	}

	return g.engine.start(ctx, userID, models.GameMines, req.Bet, func(r *games.Round, src fairness.Source) (*games.Settlement, error) {
		m, err := games.NewMines(req.Bet, count, src)
		if err != nil {
			return nil, err
		}
		r.Mines = m
		return nil, nil
	})
}

func (g *MinesGame) Act(ctx context.Context, userID string, req models.ActionRequest) (*models.RoundView, error) {
	if req.Action != "reveal" {
		return nil, models.InvalidParameter("mines does not support %q", req.Action)
	}
	if req.Index == nil {
		return nil, models.InvalidParameter("index is required")
	}
	return g.Reveal(ctx, userID, *req.Index)
}

func (g *MinesGame) Reveal(ctx context.Context, userID string, index int) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameMines, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		return r.Mines.Reveal(g.engine.fairness, index)
	})
}

func (g *MinesGame) Cashout(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.act(ctx, userID, models.GameMines, func(r *games.Round, _ fairness.Source) (*games.Settlement, error) {
		return r.Mines.Cashout()
	})
}

func (g *MinesGame) Current(ctx context.Context, userID string) (*models.RoundView, error) {
	return g.engine.current(ctx, userID, models.GameMines)
}
