// Package fairness holds every odds and multiplier computation along with the
// random sources that drive outcomes. Nothing here touches storage.
package fairness

import (
	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/models"
)

// Engine binds the pure formulas to one set of configured constants.
type Engine struct {
	minesEdge    float64
	coinflipBase float64
	tables       *ChickenTables
	edges        models.HouseEdges
}

func NewEngine(cfg config.GameConfig) *Engine {
	return &Engine{
		minesEdge:    cfg.HouseEdgeMines,
		coinflipBase: cfg.CoinflipMultiplier,
		tables:       NewChickenTables(),
		edges: models.HouseEdges{
			Mines:              cfg.HouseEdgeMines,
			Chicken:            cfg.HouseEdgeChicken,
			Blackjack:          cfg.HouseEdgeBlackjack,
			CoinflipMultiplier: cfg.CoinflipMultiplier,
		},
	}
}

func (e *Engine) HouseEdges() models.HouseEdges {
	return e.edges
}

func (e *Engine) MineMultiplier(minesCount, revealedCount int) (float64, error) {
	return MineMultiplier(e.minesEdge, minesCount, revealedCount)
}

func (e *Engine) ChickenTable(d Difficulty) ([]float64, error) {
	return e.tables.Table(d)
}

func (e *Engine) HopSuccessProbability(d Difficulty, step int) (float64, error) {
	return HopSuccessProbability(d, step)
}

func (e *Engine) CoinflipMultiplier(streak int) (float64, error) {
	return CoinflipMultiplier(e.coinflipBase, streak)
}
