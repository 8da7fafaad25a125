package models

// StartRequest carries the bet plus whichever game parameter applies.
type StartRequest struct {
	Bet        int64  `json:"bet" binding:"required,gt=0"`
	MinesCount int    `json:"mines_count" binding:"omitempty,min=1,max=24"`
	Difficulty string `json:"difficulty" binding:"omitempty,difficulty"`
}

// ActionRequest is the generic in-round intent. Action names: reveal, hit,
// stand, hop, flip.
type ActionRequest struct {
	Action string `json:"action" binding:"required,oneof=reveal hit stand hop flip"`
	Index  *int   `json:"index,omitempty"`
	Lane   *int   `json:"lane,omitempty"`
	Choice string `json:"choice,omitempty" binding:"omitempty,coin_side"`
}

type RevealRequest struct {
	Index *int `json:"index" binding:"required,min=0,max=24"`
}

type HopRequest struct {
	Lane *int `json:"lane" binding:"required,min=0,max=29"`
}

type FlipRequest struct {
	Choice string `json:"choice" binding:"required,coin_side"`
}

type ClientSeedRequest struct {
	ClientSeed string `json:"client_seed" binding:"required,min=8,max=64,alphanum"`
}

type VerificationData struct {
	ClientSeed string     `json:"client_seed"`
	Nonce      int64      `json:"nonce"`
	HouseEdges HouseEdges `json:"house_edges"`
}

// HouseEdges are the published odds constants. Chicken and blackjack edges are
// informational: their tables and fixed payouts already carry them.
type HouseEdges struct {
	Mines              float64 `json:"mines"`
	Chicken            float64 `json:"chicken"`
	Blackjack          float64 `json:"blackjack"`
	CoinflipMultiplier float64 `json:"coinflip_multiplier"`
}

type VerifyRequest struct {
	Game           GameType `json:"game" binding:"required"`
	ServerSeed     string   `json:"server_seed" binding:"required"`
	ServerSeedHash string   `json:"server_seed_hash"`
	ClientSeed     string   `json:"client_seed" binding:"required"`
	Nonce          int64    `json:"nonce" binding:"gte=0"`
	MinesCount     int      `json:"mines_count" binding:"omitempty,min=1,max=24"`
	Draws          int      `json:"draws" binding:"omitempty,min=1,max=100"`
}

type VerifyResult struct {
	Game      GameType  `json:"game"`
	HashMatch bool      `json:"hash_match"`
	Hash      string    `json:"hash"`
	MineCells []int     `json:"mine_cells,omitempty"`
	Deck      []Card    `json:"deck,omitempty"`
	Draws     []float64 `json:"draws,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20,alphanumunderscore"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *UserProfile `json:"user"`
}
