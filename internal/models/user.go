package models

// User is the stored account document. It is kept as one JSON value under
// user:{id} so ledger scripts can mutate it atomically.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Balance      int64  `json:"balance"`
	CreatedAt    int64  `json:"created_at"`

	ClientSeed string `json:"client_seed"`
	Nonce      int64  `json:"nonce"`

	Stats     UserStats      `json:"stats"`
	FreeCoins FreeCoinsState `json:"free_coins"`
}

type UserStats struct {
	TotalWins       int64  `json:"total_wins"`
	TotalLosses     int64  `json:"total_losses"`
	BiggestWin      int64  `json:"biggest_win"`
	WageredToday    int64  `json:"wagered_today"`
	WageredWeek     int64  `json:"wagered_week"`
	WageredLifetime int64  `json:"wagered_lifetime"`
	WonToday        int64  `json:"won_today"`
	WagerDay        string `json:"wager_day"`
	WinDay          string `json:"win_day"`
	LastWagered     int64  `json:"last_wagered"`
	LastWin         int64  `json:"last_win"`
}

type FreeCoinsState struct {
	LastClaim     int64 `json:"last_claim"`
	CooldownUntil int64 `json:"cooldown_until"`
}

type Presence struct {
	IsActive bool  `json:"is_active"`
	LastSeen int64 `json:"last_seen"`
}

// UserProfile is what the API exposes about an account.
type UserProfile struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email,omitempty"`
	Balance   int64          `json:"balance"`
	CreatedAt int64          `json:"created_at"`
	Stats     UserStats      `json:"stats"`
	FreeCoins FreeCoinsState `json:"free_coins"`
	Presence  Presence       `json:"presence"`
}

func (u *User) Profile(presence Presence) *UserProfile {
	return &UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
		Stats:     u.Stats,
		FreeCoins: u.FreeCoins,
		Presence:  presence,
	}
}

type Session struct {
	SessionID    string `json:"session_id" redis:"session_id"`
	UserID       string `json:"user_id" redis:"user_id"`
	CreatedAt    int64  `json:"created_at" redis:"created_at"`
	LastActivity int64  `json:"last_activity" redis:"last_activity"`
}

type LeaderboardEntry struct {
	Rank     int64  `json:"rank"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type Leaderboard struct {
	Entries  []LeaderboardEntry `json:"entries"`
	UserRank *LeaderboardEntry  `json:"user_rank,omitempty"`
}
