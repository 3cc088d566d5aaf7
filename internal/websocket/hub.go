package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"authgate/internal/principal"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// EventPermissionsChanged tells a dashboard to re-fetch /me.
const EventPermissionsChanged = "permissions_changed"

// Event is the JSON frame pushed to clients.
type Event struct {
	Type     string `json:"type"`
	SellerID string `json:"seller_id"`
}

// Authenticator verifies the token presented when opening a socket.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*principal.Seller, error)
}

// Client is one connected seller dashboard.
type Client struct {
	hub      *Hub
	sellerID string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub routes events to the connections of one seller.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan Event
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHub builds a hub. Browsers are only accepted from allowedOrigins; "*" accepts any.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimSpace(o)] = struct{}{}
	}
	h := &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := origins["*"]; ok {
				return true
			}
			_, ok := origins[origin]
			return ok
		},
	}
	return h
}

// Run dispatches events until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.sellerID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.sellerID] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", "seller_id", c.sellerID)
		case c := <-h.unregister:
			h.mu.Lock()
			h.remove(c)
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected", "seller_id", c.sellerID)
		case ev := <-h.events:
			msg, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("marshal websocket event", "error", err)
				continue
			}
			h.mu.Lock()
			for c := range h.clients[ev.SellerID] {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it rather than block other sellers.
					h.remove(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.sellerID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.sellerID)
	}
}

// NotifyPermissionsChanged queues an event for sellerID without blocking the caller.
func (h *Hub) NotifyPermissionsChanged(sellerID string) {
	select {
	case h.events <- Event{Type: EventPermissionsChanged, SellerID: sellerID}:
	default:
		h.logger.Warn("websocket event queue full, dropping event", "seller_id", sellerID)
	}
}

// ClientCount returns the number of open connections for sellerID.
func (h *Hub) ClientCount(sellerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sellerID])
}

// ServeWs authenticates the token query parameter (or Authorization header) and upgrades.
func (h *Hub) ServeWs(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			if scheme, rest, ok := strings.Cut(c.GetHeader("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
				tokenString = strings.TrimSpace(rest)
			}
		}
		if tokenString == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		seller, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			h.logger.Info("websocket connection rejected", "error", err)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		client := &Client{hub: h, sellerID: seller.ID, conn: conn, send: make(chan []byte, sendBuffer)}
		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; dashboards never send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", "seller_id", c.sellerID, "error", err)
			}
			return
		}
	}
}
