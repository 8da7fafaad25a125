package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret string

	Games  GameConfig
	Wallet WalletConfig

	SessionTimeout           time.Duration
	ActivityTimeout          time.Duration
	MaxTransactionsPerMinute int
	RoundLockTTL             time.Duration
	AuthRatePerSecond        float64
	AuthRateBurst            int
}

// GameConfig holds every constant that shapes expected value.
type GameConfig struct {
	HouseEdgeMines     float64
	HouseEdgeChicken   float64
	HouseEdgeBlackjack float64
	CoinflipMultiplier float64
	BetMin             int64
	BetMax             int64
}

type WalletConfig struct {
	StartingBalance    int64
	FreeCoinsAmount    int64
	FreeCoinsThreshold int64
	FreeCoinsCooldown  time.Duration
	TransferTaxRate    float64
	BigWinThreshold    int64
	RoundHistoryLimit  int64
	LiveWinsLimit      int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Games: GameConfig{
			HouseEdgeMines:     getEnvFloat("HOUSE_EDGE_MINES", 0.05),
			HouseEdgeChicken:   getEnvFloat("HOUSE_EDGE_CHICKEN", 0.15),
			HouseEdgeBlackjack: getEnvFloat("HOUSE_EDGE_BLACKJACK", 0.02),
			CoinflipMultiplier: getEnvFloat("COINFLIP_MULTIPLIER", 1.85),
			BetMin:             int64(getEnvInt("BET_MIN", 1)),
			BetMax:             int64(getEnvInt("BET_MAX", 1_000_000)),
		},

		Wallet: WalletConfig{
			StartingBalance:    int64(getEnvInt("STARTING_BALANCE", 500)),
			FreeCoinsAmount:    int64(getEnvInt("FREE_COINS_AMOUNT", 500)),
			FreeCoinsThreshold: int64(getEnvInt("FREE_COINS_THRESHOLD", 100)),
			FreeCoinsCooldown:  getEnvDuration("FREE_COINS_COOLDOWN", time.Hour),
			TransferTaxRate:    getEnvFloat("TRANSFER_TAX_RATE", 0.10),
			BigWinThreshold:    int64(getEnvInt("BIG_WIN_THRESHOLD", 1000)),
			RoundHistoryLimit:  int64(getEnvInt("ROUND_HISTORY_LIMIT", 50)),
			LiveWinsLimit:      int64(getEnvInt("LIVE_WINS_LIMIT", 50)),
		},

		SessionTimeout:           getEnvDuration("SESSION_TIMEOUT", 24*time.Hour),
		ActivityTimeout:          getEnvDuration("ACTIVITY_TIMEOUT", 15*time.Second),
		MaxTransactionsPerMinute: getEnvInt("MAX_TRANSACTIONS_PER_MINUTE", 10),
		RoundLockTTL:             getEnvDuration("ROUND_LOCK_TTL", 5*time.Second),
		AuthRatePerSecond:        getEnvFloat("AUTH_RATE_PER_SECOND", 1),
		AuthRateBurst:            getEnvInt("AUTH_RATE_BURST", 5),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in values without reading the environment.
func Default() *Config {
	return &Config{
		Port:      "8080",
		Env:       "development",
		LogLevel:  "info",
		RedisURL:  "localhost:6379",
		JWTSecret: "dev-secret-change-me",
		Games: GameConfig{
			HouseEdgeMines:     0.05,
			HouseEdgeChicken:   0.15,
			HouseEdgeBlackjack: 0.02,
			CoinflipMultiplier: 1.85,
			BetMin:             1,
			BetMax:             1_000_000,
		},
		Wallet: WalletConfig{
			StartingBalance:    500,
			FreeCoinsAmount:    500,
			FreeCoinsThreshold: 100,
			FreeCoinsCooldown:  time.Hour,
			TransferTaxRate:    0.10,
			BigWinThreshold:    1000,
			RoundHistoryLimit:  50,
			LiveWinsLimit:      50,
		},
		SessionTimeout:           24 * time.Hour,
		ActivityTimeout:          15 * time.Second,
		MaxTransactionsPerMinute: 10,
		RoundLockTTL:             5 * time.Second,
		AuthRatePerSecond:        1,
		AuthRateBurst:            5,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	g := c.Games
	switch {
	case g.HouseEdgeMines < 0 || g.HouseEdgeMines >= 1:
		return fmt.Errorf("HOUSE_EDGE_MINES must be in [0,1), got %v", g.HouseEdgeMines)
	case g.HouseEdgeChicken < 0 || g.HouseEdgeChicken >= 1:
		return fmt.Errorf("HOUSE_EDGE_CHICKEN must be in [0,1), got %v", g.HouseEdgeChicken)
	case g.HouseEdgeBlackjack < 0 || g.HouseEdgeBlackjack >= 1:
		return fmt.Errorf("HOUSE_EDGE_BLACKJACK must be in [0,1), got %v", g.HouseEdgeBlackjack)
	case g.CoinflipMultiplier <= 1:
		return fmt.Errorf("COINFLIP_MULTIPLIER must be greater than 1, got %v", g.CoinflipMultiplier)
	case g.BetMin < 1 || g.BetMax < g.BetMin:
		return fmt.Errorf("bet limits invalid: min=%d max=%d", g.BetMin, g.BetMax)
	}

	w := c.Wallet
	switch {
	case w.StartingBalance < 0:
		return fmt.Errorf("STARTING_BALANCE must not be negative")
	case w.FreeCoinsAmount <= 0 || w.FreeCoinsThreshold <= 0:
		return fmt.Errorf("free coins amount and threshold must be positive")
	case w.FreeCoinsCooldown <= 0:
		return fmt.Errorf("FREE_COINS_COOLDOWN must be positive")
	case w.TransferTaxRate < 0 || w.TransferTaxRate >= 1:
		return fmt.Errorf("TRANSFER_TAX_RATE must be in [0,1), got %v", w.TransferTaxRate)
	case w.RoundHistoryLimit <= 0 || w.LiveWinsLimit <= 0:
		return fmt.Errorf("history limits must be positive")
	}

	switch {
	case c.SessionTimeout <= 0 || c.ActivityTimeout <= 0:
		return fmt.Errorf("session and activity timeouts must be positive")
	case c.MaxTransactionsPerMinute <= 0:
		return fmt.Errorf("MAX_TRANSACTIONS_PER_MINUTE must be positive")
	case c.RoundLockTTL <= 0:
		return fmt.Errorf("ROUND_LOCK_TTL must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
