package fairness

import (
	"math"

	"moon-casino-backend/internal/models"
)

type Side string

const (
	Heads Side = "heads"
	Tails Side = "tails"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Heads, Tails:
		return Side(s), nil
	}
	return "", models.InvalidParameter("coin side must be heads or tails, got %q", s)
}

// CoinflipMultiplier is base^streak; it defines the payout curve only.
func CoinflipMultiplier(base float64, streak int) (float64, error) {
	if streak < 0 {
		return 0, models.InvalidParameter("streak %d is negative", streak)
	}
	if base <= 0 {
		return 0, models.InvalidParameter("coinflip base %v must be positive", base)
	}
	return math.Pow(base, float64(streak)), nil
}

// FlipCoin draws one fair side.
func FlipCoin(src Source) Side {
	if src.Float64() < 0.5 {
		return Heads
	}
	return Tails
}
