// Command maintenance toggles the casino maintenance flag in Redis.
//
//	maintenance -on -message "table upgrade" -for 30m
//	maintenance -off
//	maintenance            (prints the current state)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

func main() {
	on := flag.Bool("on", false, "enable maintenance")
	off := flag.Bool("off", false, "disable maintenance")
	message := flag.String("message", "Scheduled maintenance", "message shown to players")
	duration := flag.Duration("for", 0, "maintenance window; 0 means until switched off")
	flag.Parse()

	if err := run(*on, *off, *message, *duration); err != nil {
		logger.Error("maintenance command failed", "error", err)
		os.Exit(1)
	}
}

func run(on, off bool, message string, duration time.Duration) error {
	if on && off {
		return fmt.Errorf("-on and -off are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		return err
	}
	defer redisService.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch {
	case on:
		status := models.MaintenanceStatus{Enabled: true, Message: message}
		if duration > 0 {
			status.EndsAt = time.Now().Add(duration).UnixMilli()
		}
		if err := redisService.SetMaintenance(ctx, status); err != nil {
			return err
		}
		logger.Info("maintenance enabled", "message", message, "ends_at", status.EndsAt)
	case off:
		if err := redisService.SetMaintenance(ctx, models.MaintenanceStatus{}); err != nil {
			return err
		}
		logger.Info("maintenance disabled")
	}

	status, err := redisService.GetMaintenance(ctx)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(status)
}
