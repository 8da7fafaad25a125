package models

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type TransferRequest struct {
	ToUsername string `json:"to_username" binding:"required,min=3,max=20"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
}

type TransferResult struct {
	Tax             int64 `json:"tax"`
	RecipientAmount int64 `json:"recipient_amount"`
	SenderBalance   int64 `json:"sender_balance"`
}

type FreeCoinsResult struct {
	Amount        int64 `json:"amount"`
	Balance       int64 `json:"balance"`
	CooldownUntil int64 `json:"cooldown_until"`
}

// LiveWin is one entry of the public wins feed.
type LiveWin struct {
	Username   string   `json:"username"`
	Game       GameType `json:"game"`
	Bet        int64    `json:"bet"`
	Payout     int64    `json:"payout"`
	Multiplier float64  `json:"multiplier"`
	Timestamp  int64    `json:"timestamp"`
}

// Event travels over the store's pub/sub channel to websocket clients. An
// empty UserID means everyone.
type Event struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Data   any    `json:"data"`
}

const (
	EventBalanceUpdate = "balance_update"
	EventRoundSettled  = "round_settled"
	EventBigWin        = "big_win"
	EventTransfer      = "transfer"
)

type MaintenanceStatus struct {
	Enabled bool   `json:"enabled" redis:"enabled"`
	EndsAt  int64  `json:"ends_at" redis:"ends_at"`
	Message string `json:"message" redis:"message"`
}
