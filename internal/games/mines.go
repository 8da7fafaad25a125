package games

import (
	"slices"

	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
)

type Mines struct {
	Bet        int64              `json:"bet"`
	MinesCount int                `json:"mines_count"`
	Grid       []bool             `json:"grid"`
	Revealed   []int              `json:"revealed"`
	Hit        *int               `json:"hit,omitempty"`
	Status     models.RoundStatus `json:"status"`
	Current    float64            `json:"multiplier"`
}

func NewMines(bet int64, minesCount int, src fairness.Source) (*Mines, error) {
	grid, err := fairness.PlaceMines(src, minesCount)
	if err != nil {
		return nil, err
	}
	return &Mines{
		Bet:        bet,
		MinesCount: minesCount,
		Grid:       grid,
		Revealed:   []int{},
		Status:     models.StatusActive,
		Current:    1.0,
	}, nil
}

func (m *Mines) SafeCells() int {
	return fairness.MinesBoardSize - m.MinesCount
}

// Reveal opens one cell. Re-revealing a cell is a no-op returning nil, nil.
// A mine ends the round as a loss; clearing every safe cell cashes out.
func (m *Mines) Reveal(e *fairness.Engine, index int) (*Settlement, error) {
	if m.Status != models.StatusActive {
		return nil, models.InvalidTransition("mines round is %s", m.Status)
	}
	if index < 0 || index >= fairness.MinesBoardSize {
		return nil, models.InvalidParameter("cell %d outside 0..%d", index, fairness.MinesBoardSize-1)
	}
	if slices.Contains(m.Revealed, index) {
		return nil, nil
	}

	if m.Grid[index] {
		m.Hit = &index
		m.Status = models.StatusLost
		m.Current = 0
		return loss(), nil
	}

	next, err := e.MineMultiplier(m.MinesCount, len(m.Revealed)+1)
	if err != nil {
		return nil, err
	}
	m.Revealed = append(m.Revealed, index)
	m.Current = next

	if len(m.Revealed) == m.SafeCells() {
		return m.Cashout()
	}
	return nil, nil
}

func (m *Mines) Cashout() (*Settlement, error) {
	if m.Status != models.StatusActive {
		return nil, models.InvalidTransition("mines round is %s", m.Status)
	}
	if len(m.Revealed) == 0 {
		return nil, models.InvalidTransition("reveal at least one cell before cashing out")
	}
	m.Status = models.StatusCashedOut
	return cashout(m.Bet, m.Current), nil
}

func (m *Mines) status() models.RoundStatus { return m.Status }

func (m *Mines) multiplier() float64 { return m.Current }

func (m *Mines) view(v *models.RoundView, e *fairness.Engine) {
	mv := &models.MinesView{
		MinesCount: m.MinesCount,
		Revealed:   slices.Clone(m.Revealed),
		HitIndex:   m.Hit,
	}
	if m.Status == models.StatusActive && len(m.Revealed) < m.SafeCells() {
		mv.NextMultiplier, _ = e.MineMultiplier(m.MinesCount, len(m.Revealed)+1)
	}
	if m.Status != models.StatusActive {
		mv.Grid = make([]string, len(m.Grid))
		for i, mine := range m.Grid {
			mv.Grid[i] = "safe"
			if mine {
				mv.Grid[i] = "mine"
			}
		}
	}
	v.Mines = mv
}
