package games

import (
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/models"
)

type ChickenRoad struct {
	Bet         int64               `json:"bet"`
	Difficulty  fairness.Difficulty `json:"difficulty"`
	CurrentStep int                 `json:"current_step"`
	Current     float64             `json:"multiplier"`
	CrashLane   *int                `json:"crash_lane,omitempty"`
	Status      models.RoundStatus  `json:"status"`
}

func NewChickenRoad(bet int64, difficulty fairness.Difficulty) *ChickenRoad {
	return &ChickenRoad{
		Bet:         bet,
		Difficulty:  difficulty,
		CurrentStep: -1,
		Current:     1.0,
		Status:      models.StatusActive,
	}
}

// Hop attempts the next lane. Only currentStep+1 is accepted; the last lane
// cashes out on success.
func (c *ChickenRoad) Hop(e *fairness.Engine, lane int, src fairness.Source) (*Settlement, error) {
	if c.Status != models.StatusActive {
		return nil, models.InvalidTransition("chicken round is %s", c.Status)
	}
	if lane != c.CurrentStep+1 {
		return nil, models.InvalidTransition("next lane is %d, got %d", c.CurrentStep+1, lane)
	}

	p, err := e.HopSuccessProbability(c.Difficulty, lane)
	if err != nil {
		return nil, err
	}
	table, err := e.ChickenTable(c.Difficulty)
	if err != nil {
		return nil, err
	}

	if src.Float64() >= p {
		c.CrashLane = &lane
		c.Status = models.StatusCrashed
		c.Current = 0
		return loss(), nil
	}

	c.CurrentStep = lane
	c.Current = table[lane]
	if lane == fairness.ChickenLanes-1 {
		return c.Cashout()
	}
	return nil, nil
}

func (c *ChickenRoad) Cashout() (*Settlement, error) {
	if c.Status != models.StatusActive {
		return nil, models.InvalidTransition("chicken round is %s", c.Status)
	}
	if c.CurrentStep < 0 {
		return nil, models.InvalidTransition("hop at least once before cashing out")
	}
	c.Status = models.StatusCashedOut
	return cashout(c.Bet, c.Current), nil
}

func (c *ChickenRoad) status() models.RoundStatus { return c.Status }

func (c *ChickenRoad) multiplier() float64 { return c.Current }

func (c *ChickenRoad) view(v *models.RoundView, e *fairness.Engine) {
	lanes, _ := e.ChickenTable(c.Difficulty)
	cv := &models.ChickenView{
		Difficulty:  string(c.Difficulty),
		CurrentStep: c.CurrentStep,
		Lanes:       lanes,
	}
	next := c.CurrentStep + 1
	if c.Status == models.StatusActive && next < fairness.ChickenLanes {
		cv.NextMultiplier = lanes[next]
		cv.NextProbability, _ = e.HopSuccessProbability(c.Difficulty, next)
	}
	v.Chicken = cv
}
