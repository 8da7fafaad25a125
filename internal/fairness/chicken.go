package fairness

import (
	"math"

	"moon-casino-backend/internal/models"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Expert Difficulty = "expert"
)

var Difficulties = []Difficulty{Easy, Medium, Hard, Expert}

const (
	ChickenLanes       = 30
	minHopProbability  = 0.05
	expertFirstLaneMin = 1.5
	expertFirstLane    = 1.98
)

var hopOdds = map[Difficulty]struct{ base, decrease float64 }{
	Easy:   {0.85, 0.02},
	Medium: {0.75, 0.03},
	Hard:   {0.65, 0.04},
	Expert: {0.45, 0.05},
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if _, ok := hopOdds[d]; !ok {
		return "", models.InvalidParameter("unknown difficulty %q", s)
	}
	return d, nil
}

// ChickenTables is computed once and read-only afterwards.
type ChickenTables struct {
	lanes map[Difficulty][]float64
}

func NewChickenTables() *ChickenTables {
	t := &ChickenTables{lanes: make(map[Difficulty][]float64, len(Difficulties))}

	easy := make([]float64, ChickenLanes)
	medium := make([]float64, ChickenLanes)
	hard := make([]float64, ChickenLanes)
	expert := make([]float64, ChickenLanes)

	for i := 0; i < ChickenLanes; i++ {
		n := float64(i + 1)
		easy[i] = 1.02 * math.Pow(1.06, n)
		medium[i] = 1.10 * math.Pow(1.17, n)
		hard[i] = 1.20 * math.Pow(1.30, n)
		expert[i] = math.Pow(30000, n/ChickenLanes)
	}
	if expert[0] < expertFirstLaneMin {
		expert[0] = expertFirstLane
	}

	t.lanes[Easy] = easy
	t.lanes[Medium] = medium
	t.lanes[Hard] = hard
	t.lanes[Expert] = expert
	return t
}

// Table returns a copy of the lane multipliers for d.
func (t *ChickenTables) Table(d Difficulty) ([]float64, error) {
	lanes, ok := t.lanes[d]
	if !ok {
		return nil, models.InvalidParameter("unknown difficulty %q", d)
	}
	out := make([]float64, len(lanes))
	copy(out, lanes)
	return out, nil
}

func (t *ChickenTables) Multiplier(d Difficulty, lane int) (float64, error) {
	lanes, ok := t.lanes[d]
	if !ok {
		return 0, models.InvalidParameter("unknown difficulty %q", d)
	}
	if lane < 0 || lane >= len(lanes) {
		return 0, models.InvalidParameter("lane %d outside 0..%d", lane, len(lanes)-1)
	}
	return lanes[lane], nil
}

func HopSuccessProbability(d Difficulty, step int) (float64, error) {
	odds, ok := hopOdds[d]
	if !ok {
		return 0, models.InvalidParameter("unknown difficulty %q", d)
	}
	if step < 0 || step >= ChickenLanes {
		return 0, models.InvalidParameter("step %d outside 0..%d", step, ChickenLanes-1)
	}
	return math.Max(minHopProbability, odds.base-float64(step)*odds.decrease), nil
}
