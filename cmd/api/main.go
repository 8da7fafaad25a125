package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/handlers"
	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/middleware"
	"moon-casino-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisURL)
		os.Exit(1)
	}
	defer redisService.Close()

	jwtService, err := services.NewJWTService(cfg.JWTSecret, cfg.SessionTimeout)
	if err != nil {
		logger.Error("failed to create jwt service", "error", err)
		os.Exit(1)
	}

	wallet := services.NewWallet(redisService, cfg.Wallet)
	sessions := services.NewSessionService(redisService, jwtService, cfg)
	gameEngine := services.NewGameEngine(redisService, wallet, fairness.NewEngine(cfg.Games), cfg)

	hub := handlers.NewWebSocketHub()
	go hub.Run(ctx)
	go func() {
		if err := services.RelayEvents(ctx, redisService, hub); err != nil {
			logger.Error("event relay stopped", "error", err)
		}
	}()

	ipLimiter := middleware.NewIPRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst, 10*time.Minute)
	go ipLimiter.Run(ctx)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:     cfg,
		Redis:      redisService,
		Sessions:   sessions,
		Wallet:     wallet,
		GameEngine: gameEngine,
		Hub:        hub,
		IPLimiter:  ipLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
