package models

type TransactionType string

const (
	TransactionWager            TransactionType = "wager"
	TransactionWin              TransactionType = "win"
	TransactionLoss             TransactionType = "loss"
	TransactionPush             TransactionType = "push"
	TransactionCashout          TransactionType = "cashout"
	TransactionTransferSent     TransactionType = "transfer_sent"
	TransactionTransferReceived TransactionType = "transfer_received"
	TransactionFreeCoins        TransactionType = "free_coins"
)

func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionWin, TransactionPush, TransactionCashout, TransactionTransferReceived, TransactionFreeCoins:
		return true
	}
	return false
}

// Transaction is append-only; ledger scripts write it in the same step as the
// balance change it describes.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	Game         GameType        `json:"game,omitempty"`
	RoundID      string          `json:"round_id,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	Timestamp    int64           `json:"timestamp"`
	BalanceAfter int64           `json:"balance_after"`
}
