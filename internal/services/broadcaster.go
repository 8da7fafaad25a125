package services

import (
	"context"
	"encoding/json"

	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/models"
)

// Broadcaster delivers ledger events to connected clients. An empty userID
// means every client.
type Broadcaster interface {
	BroadcastToUser(userID string, payload []byte)
	BroadcastAll(payload []byte)
}

func isUserScoped(eventType string) bool {
	switch eventType {
	case models.EventBalanceUpdate, models.EventRoundSettled:
		return true
	}
	return false
}

// RelayEvents forwards everything the ledger scripts publish until ctx ends.
func RelayEvents(ctx context.Context, redis *RedisService, b Broadcaster) error {
	pubsub := redis.Subscribe(ctx)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return storeError(err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			dispatchEvent(b, []byte(msg.Payload))
		}
	}
}

func dispatchEvent(b Broadcaster, payload []byte) {
	var event models.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Warn("dropping malformed event", "error", err)
		return
	}

	if isUserScoped(event.Type) {
		if event.UserID == "" {
			return
		}
		b.BroadcastToUser(event.UserID, payload)
		return
	}

	// transfer is addressed to the recipient but announced to everyone
	if event.UserID != "" && event.Type != models.EventTransfer {
		b.BroadcastToUser(event.UserID, payload)
		return
	}
	b.BroadcastAll(payload)
}
