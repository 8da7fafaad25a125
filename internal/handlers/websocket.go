package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/metrics"
	"moon-casino-backend/internal/middleware"
	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	send   chan []byte
}

type Message struct {
	Type   string      `json:"type"`
	UserID string      `json:"user_id,omitempty"`
	Data   interface{} `json:"data"`
}

type envelope struct {
	userID  string
	payload []byte
}

// WebSocketHub owns every connection. Only Run touches the client map.
type WebSocketHub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
	}
}

func (hub *WebSocketHub) Run(ctx context.Context) {
	defer close(hub.done)

	for {
		select {
		case <-ctx.Done():
			for _, conns := range hub.clients {
				for client := range conns {
					close(client.send)
				}
			}
			hub.clients = make(map[string]map[*Client]struct{})
			return

		case client := <-hub.register:
			conns, ok := hub.clients[client.UserID]
			if !ok {
				conns = make(map[*Client]struct{})
				hub.clients[client.UserID] = conns
			}
			conns[client] = struct{}{}
			metrics.WebsocketConnections.Inc()
			logger.Debug("websocket client registered", "user_id", client.UserID)

		case client := <-hub.unregister:
			hub.remove(client)

		case env := <-hub.broadcast:
			if env.userID != "" {
				for client := range hub.clients[env.userID] {
					hub.deliver(client, env.payload)
				}
				continue
			}
			for _, conns := range hub.clients {
				for client := range conns {
					hub.deliver(client, env.payload)
				}
			}
		}
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	conns, ok := hub.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(hub.clients, client.UserID)
	}
	close(client.send)
	metrics.WebsocketConnections.Dec()
	logger.Debug("websocket client unregistered", "user_id", client.UserID)
}

// deliver drops clients that cannot keep up instead of blocking the hub.
func (hub *WebSocketHub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		hub.remove(client)
	}
}

// Register returns false once the hub has stopped.
func (hub *WebSocketHub) Register(client *Client) bool {
	select {
	case hub.register <- client:
		return true
	case <-hub.done:
		return false
	}
}

func (hub *WebSocketHub) Unregister(client *Client) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) enqueue(env envelope) {
	select {
	case hub.broadcast <- env:
	default:
		logger.Warn("websocket broadcast queue full, dropping event")
	}
}

func (hub *WebSocketHub) BroadcastToUser(userID string, payload []byte) {
	hub.enqueue(envelope{userID: userID, payload: payload})
}

func (hub *WebSocketHub) BroadcastAll(payload []byte) {
	hub.enqueue(envelope{payload: payload})
}

var _ services.Broadcaster = (*WebSocketHub)(nil)

type WebSocketHandler struct {
	hub      *WebSocketHub
	sessions *services.SessionService
	wallet   *services.Wallet
}

func NewWebSocketHandler(hub *WebSocketHub, sessions *services.SessionService, wallet *services.Wallet) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		sessions: sessions,
		wallet:   wallet,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("failed to upgrade to websocket", "user_id", userID, "error", err)
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go h.writePump(client)
	h.sendBalance(c.Request.Context(), client)
	h.readPump(client)
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed", "user_id", client.UserID, "error", err)
			}
			return
		}
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage treats every inbound message as a presence heartbeat.
func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := h.sessions.Heartbeat(ctx, client.UserID); err != nil {
		logger.Warn("websocket heartbeat failed", "user_id", client.UserID, "error", err)
	}

	switch msg.Type {
	case "PING":
		h.send(client, Message{
			Type: "PONG",
			Data: gin.H{"timestamp": time.Now().UnixMilli()},
		})
	case "BALANCE":
		h.sendBalance(ctx, client)
	}
}

func (h *WebSocketHandler) sendBalance(ctx context.Context, client *Client) {
	balance, err := h.wallet.Balance(ctx, client.UserID)
	if err != nil {
		logger.Warn("failed to get balance for websocket", "user_id", client.UserID, "error", err)
		return
	}
	h.send(client, Message{
		Type:   models.EventBalanceUpdate,
		UserID: client.UserID,
		Data:   gin.H{"balance": balance},
	})
}

func (h *WebSocketHandler) send(client *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.hub.BroadcastToUser(client.UserID, payload)
}
