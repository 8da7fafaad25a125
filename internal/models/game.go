package models

type GameType string

const (
	GameMines     GameType = "mines"
	GameBlackjack GameType = "blackjack"
	GameChicken   GameType = "chicken"
	GameCoinflip  GameType = "coinflip"
)

var GameTypes = []GameType{GameMines, GameBlackjack, GameChicken, GameCoinflip}

func (g GameType) Valid() bool {
	for _, t := range GameTypes {
		if g == t {
			return true
		}
	}
	return false
}

type RoundStatus string

const (
	StatusActive    RoundStatus = "active"
	StatusCashedOut RoundStatus = "cashed_out"
	StatusLost      RoundStatus = "lost"
	StatusCompleted RoundStatus = "completed"
	StatusCrashed   RoundStatus = "crashed"
	StatusEnded     RoundStatus = "ended"
)

func (s RoundStatus) Terminal() bool {
	return s != StatusActive && s != ""
}

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
	// OutcomeCashout is a cash-out that returned less than the stake.
	OutcomeCashout Outcome = "cashout"
)

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// RoundView is the public projection of a round. Hidden data (mine grid,
// hole card, server seed) only appears once the round is terminal.
type RoundView struct {
	ID              string          `json:"id"`
	Game            GameType        `json:"game"`
	Bet             int64           `json:"bet"`
	Status          RoundStatus     `json:"status"`
	Multiplier      float64         `json:"multiplier"`
	PotentialPayout int64           `json:"potential_payout"`
	Settlement      *SettlementView `json:"settlement,omitempty"`
	Fairness        FairnessView    `json:"fairness"`
	CreatedAt       int64           `json:"created_at"`
	SettledAt       int64           `json:"settled_at,omitempty"`

	Mines     *MinesView     `json:"mines,omitempty"`
	Blackjack *BlackjackView `json:"blackjack,omitempty"`
	Chicken   *ChickenView   `json:"chicken,omitempty"`
	Coinflip  *CoinflipView  `json:"coinflip,omitempty"`
}

type SettlementView struct {
	Outcome Outcome `json:"outcome"`
	Payout  int64   `json:"payout"`
	Profit  int64   `json:"profit"`
	Balance int64   `json:"balance,omitempty"`
}

type FairnessView struct {
	ServerSeedHash string `json:"server_seed_hash"`
	ServerSeed     string `json:"server_seed,omitempty"`
	ClientSeed     string `json:"client_seed"`
	Nonce          int64  `json:"nonce"`
}

type MinesView struct {
	MinesCount     int      `json:"mines_count"`
	Revealed       []int    `json:"revealed"`
	NextMultiplier float64  `json:"next_multiplier,omitempty"`
	Grid           []string `json:"grid,omitempty"`
	HitIndex       *int     `json:"hit_index,omitempty"`
}

type BlackjackView struct {
	PlayerHand   []Card  `json:"player_hand"`
	DealerHand   []Card  `json:"dealer_hand"`
	PlayerScore  int     `json:"player_score"`
	DealerScore  int     `json:"dealer_score"`
	DealerHidden bool    `json:"dealer_hidden"`
	Result       Outcome `json:"result,omitempty"`
}

type ChickenView struct {
	Difficulty      string    `json:"difficulty"`
	CurrentStep     int       `json:"current_step"`
	NextMultiplier  float64   `json:"next_multiplier,omitempty"`
	NextProbability float64   `json:"next_probability,omitempty"`
	Lanes           []float64 `json:"lanes"`
}

type CoinflipView struct {
	Streak      int         `json:"streak"`
	Accumulated int64       `json:"accumulated"`
	History     []FlipEntry `json:"history"`
}

type FlipEntry struct {
	Choice string `json:"choice"`
	Result string `json:"result"`
	Won    bool   `json:"won"`
}
