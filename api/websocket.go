package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced on the REST routes only
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	clientBuffer = 64
)

// ════════════════════════════════════════════════════════════════════
// WebSocket Hub
// ════════════════════════════════════════════════════════════════════

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WSHub fans research progress out to every connected client.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]struct{}
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	stopped    chan struct{} // closed when Run returns
	logger     *zap.Logger
}

// WSClient is a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(logger *zap.Logger) *WSHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHub{
		clients:    make(map[*WSClient]struct{}),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		stopped:    make(chan struct{}),
		logger:     logger.With(zap.String("component", "ws")),
	}
}

// Run is the hub event loop. It returns when ctx is canceled, closing
// every client's send channel.
func (h *WSHub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			var slow []*WSClient
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.logger.Warn("dropping slow client")
				h.drop(c)
			}
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *WSHub) Register(c *WSClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister removes a client; it is a no-op once the hub has stopped.
func (h *WSHub) Unregister(c *WSClient) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

func (h *WSHub) drop(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues a message for every client. It never blocks; messages
// are dropped when the queue is full.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message", zap.String("type", msg.Type))
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ════════════════════════════════════════════════════════════════════
// Connection pumps
// ════════════════════════════════════════════════════════════════════

// handleWebSocket upgrades the connection and subscribes it to research
// progress events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &WSClient{hub: s.wsHub, send: make(chan WSMessage, clientBuffer)}
	if !s.wsHub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go wsWritePump(conn, client, s.logger)
	go wsReadPump(conn, client, s.logger)
}

// wsReadPump drains client frames so control messages are processed.
// The feed is one-way; client payloads are discarded.
func wsReadPump(conn *websocket.Conn, client *WSClient, logger *zap.Logger) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// wsWritePump writes hub messages and keepalive pings to the connection.
func wsWritePump(conn *websocket.Conn, client *WSClient, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
