package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func GenerateClientSeed() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate client seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Payout converts bet x multiplier into whole coins, rounding down.
func Payout(bet int64, multiplier float64) int64 {
	return decimal.NewFromInt(bet).
		Mul(decimal.NewFromFloat(multiplier)).
		Floor().
		IntPart()
}

// Tax returns floor(amount * rate).
func Tax(amount int64, rate float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(rate)).
		Floor().
		IntPart()
}

func ValidateBet(bet, min, max int64) error {
	if bet < min {
		return InvalidParameter("minimum bet is %d", min)
	}
	if bet > max {
		return InvalidParameter("maximum bet is %d", max)
	}
	return nil
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
