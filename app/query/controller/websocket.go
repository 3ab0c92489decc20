package controller

import (
	"context"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	pkgredis "github.com/GareBear99/admension/pkg/redis"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Public read-only stream, any origin may listen.
		return true
	},
}

// ServerMessage represents messages sent to WebSocket clients.
type ServerMessage struct {
	Type    string      `json:"type"`    // "ledger.generated", "ping", "error"
	Payload interface{} `json:"payload"` // Event-specific data
}

// HandleWebSocket upgrades the connection and streams ledger.generated
// notifications relayed from Redis Pub/Sub. The stream is one-way; client
// frames are read only to detect disconnects.
func (c *Controller) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if c.App.RedisClient == nil {
		http.Error(w, "Real-time events not available (Redis disabled)", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.App.Logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	c.App.Logger.Info("WebSocket client connected", zap.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan ServerMessage, 64)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				c.App.Logger.Error("Panic in Redis relay goroutine",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())))
				cancel()
			}
		}()
		c.relayLedgerEvents(ctx, send)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case send <- ServerMessage{Type: "ping", Payload: map[string]int64{"timestamp": time.Now().Unix()}}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-send:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Block reading client frames until the connection drops.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	wg.Wait()
	c.App.Logger.Info("WebSocket client disconnected", zap.String("remote_addr", r.RemoteAddr))
}

// relayLedgerEvents forwards Redis ledger notifications into the send channel
// until the connection context ends.
func (c *Controller) relayLedgerEvents(ctx context.Context, send chan<- ServerMessage) {
	sub := c.App.RedisClient.Subscribe(ctx, pkgredis.LedgerChannel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				payload = msg.Payload
			}
			select {
			case send <- ServerMessage{Type: "ledger.generated", Payload: payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}
