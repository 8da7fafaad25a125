package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/middleware"
	"moon-casino-backend/internal/services"
)

type RouterDeps struct {
	Config     *config.Config
	Redis      *services.RedisService
	Sessions   *services.SessionService
	Wallet     *services.Wallet
	GameEngine *services.GameEngine
	Hub        *WebSocketHub
	IPLimiter  *middleware.IPRateLimiter
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogging(), middleware.Metrics(), cors())

	authHandler := NewAuthHandler(d.Sessions)
	userHandler := NewUserHandler(d.Sessions, d.Wallet)
	walletHandler := NewWalletHandler(d.Wallet)
	gameHandler := NewGameHandler(d.GameEngine)
	wsHandler := NewWebSocketHandler(d.Hub, d.Sessions, d.Wallet)

	maintenance := middleware.MaintenanceGate(d.Redis)
	limit := func(action string) gin.HandlerFunc {
		return middleware.UserRateLimit(d.Redis, action, d.Config.MaxTransactionsPerMinute, services.TTLRateLimitWindow)
	}

	router.GET("/health", func(c *gin.Context) {
		if err := d.Redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "redis": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": "up"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/auth")
	if d.IPLimiter != nil {
		auth.Use(d.IPLimiter.Middleware())
	}
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", maintenance, authHandler.Login)
	}

	api := router.Group("/api")
	api.GET("/leaderboard", userHandler.Leaderboard)
	api.GET("/wins/live", userHandler.LiveWins)
	api.POST("/verify", gameHandler.VerifyGame)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(d.Sessions))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.POST("/logout", userHandler.Logout)
		protected.POST("/heartbeat", userHandler.Heartbeat)
		protected.GET("/online", userHandler.Online)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		wallet := protected.Group("/wallet")
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/transactions", walletHandler.GetTransactions)
			wallet.POST("/transfer", limit("transfer"), walletHandler.Transfer)
			wallet.POST("/free-coins", maintenance, limit("free_coins"), walletHandler.ClaimFreeCoins)
		}

		games := protected.Group("/games")
		{
			games.GET("/active", gameHandler.GetActiveGames)
			games.GET("/history", gameHandler.GetGameHistory)
			games.GET("/verification", gameHandler.GetVerificationData)
			games.POST("/client-seed", gameHandler.SetClientSeed)

			games.POST("/mines/reveal", gameHandler.RevealMine)
			games.POST("/blackjack/hit", gameHandler.Hit)
			games.POST("/blackjack/stand", gameHandler.Stand)
			games.POST("/chicken/hop", gameHandler.Hop)
			games.POST("/coinflip/flip", gameHandler.Flip)

			games.POST("/:game/start", maintenance, limit("start"), gameHandler.Start)
			games.POST("/:game/action", gameHandler.Action)
			games.POST("/:game/cashout", gameHandler.Cashout)
			games.GET("/:game/current", gameHandler.Current)
		}
	}

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
