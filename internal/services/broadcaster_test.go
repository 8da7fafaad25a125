package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moon-casino-backend/internal/models"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	toUser map[string][][]byte
	toAll  [][]byte
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{toUser: make(map[string][][]byte)}
}

func (r *recordingBroadcaster) BroadcastToUser(userID string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toUser[userID] = append(r.toUser[userID], payload)
}

func (r *recordingBroadcaster) BroadcastAll(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toAll = append(r.toAll, payload)
}

func (r *recordingBroadcaster) counts(userID string) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.toUser[userID]), len(r.toAll)
}

func event(t *testing.T, e models.Event) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestDispatchEvent(t *testing.T) {
	b := newRecordingBroadcaster()

	dispatchEvent(b, event(t, models.Event{Type: models.EventBalanceUpdate, UserID: "u1", Data: map[string]int{"balance": 10}}))
	dispatchEvent(b, event(t, models.Event{Type: models.EventRoundSettled, UserID: "u1"}))
	dispatchEvent(b, event(t, models.Event{Type: models.EventBalanceUpdate}))
	dispatchEvent(b, event(t, models.Event{Type: models.EventBigWin, Data: map[string]int{"payout": 5000}}))
	dispatchEvent(b, event(t, models.Event{Type: models.EventTransfer, UserID: "u2"}))
	dispatchEvent(b, []byte("{not json"))

	user, all := b.counts("u1")
	assert.Equal(t, 2, user)
	assert.Equal(t, 2, all)
}

func TestRelayEventsFromLedgerScripts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	rs := NewRedisServiceFromClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := newRecordingBroadcaster()
	done := make(chan error, 1)
	go func() { done <- RelayEvents(ctx, rs, b) }()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("")) == 1
	}, time.Second, 10*time.Millisecond)

	user := &models.User{ID: "u1", Username: "relay", Email: "relay@example.com", Balance: 100}
	require.NoError(t, rs.CreateUser(ctx, user))
	require.NoError(t, debitScript.Run(ctx, client, []string{userKey("u1")}, 10, "tx1", "wager", "mines", 1).Err())

	require.Eventually(t, func() bool {
		n, _ := b.counts("u1")
		return n == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
