package fairness

import (
	"moon-casino-backend/internal/models"
)

var (
	suits = []string{"♠", "♥", "♦", "♣"}
	ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

const DeckSize = 52

// NewDeck returns the 52 cards shuffled with Fisher-Yates.
func NewDeck(src Source) []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, models.Card{Rank: r, Suit: s})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

func CardValue(c models.Card) int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J", "10":
		return 10
	}
	return int(c.Rank[0] - '0')
}

// ScoreHand counts aces as 11 and drops them to 1 while the hand is bust.
func ScoreHand(cards []models.Card) int {
	score, aces := 0, 0
	for _, c := range cards {
		score += CardValue(c)
		if c.Rank == "A" {
			aces++
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}
