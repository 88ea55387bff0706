package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/padely/padely/internal/announce"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Message is the envelope of everything pushed to browsers.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// clientMessage is what browsers report: tab visibility and the result of
// the notification permission prompt.
type clientMessage struct {
	Type       string `json:"type"`
	Visible    *bool  `json:"visible,omitempty"`
	Permission string `json:"permission,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one connected browser tab.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu         sync.Mutex
	closed     bool
	visible    bool
	permission announce.Permission
}

func (c *Client) state() (visible bool, perm announce.Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible, c.permission
}

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations until ctx is cancelled, then closes every
// client. Intended to be called with `go`.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Websocket client connected", "client_id", c.ID, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				c.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Websocket client disconnected", "client_id", c.ID, "clients", n)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
	c.mu.Unlock()
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	c := &Client{
		ID:         uuid.NewString(),
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		permission: announce.PermissionDefault,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Broadcast sends msg to every connected client. Clients with a full buffer
// miss the message.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal websocket message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		h.deliver(c, data, msg.Type)
	}
}

// Each asks pick for the message of every connected client given the tab
// state the client reported. A nil message skips the client. Each returns
// the number of clients a message was queued for.
func (h *Hub) Each(pick func(visible bool, perm announce.Permission) *Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	encoded := make(map[*Message][]byte)
	sent := 0
	for c := range h.clients {
		msg := pick(c.state())
		if msg == nil {
			continue
		}
		data, ok := encoded[msg]
		if !ok {
			var err error
			if data, err = json.Marshal(msg); err != nil {
				h.logger.Error("Failed to marshal websocket message", "type", msg.Type, "error", err)
				continue
			}
			encoded[msg] = data
		}
		if h.deliver(c, data, msg.Type) {
			sent++
		}
	}
	return sent
}

func (h *Hub) deliver(c *Client, data []byte, msgType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		h.logger.Warn("Websocket client buffer full, skipping", "client_id", c.ID, "type", msgType)
		return false
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Permission aggregates the clients' notification permission: granted when
// any client granted it, denied when every client denied it.
func (h *Hub) Permission() announce.Permission {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return announce.PermissionDefault
	}
	denied := 0
	for c := range h.clients {
		switch _, p := c.state(); p {
		case announce.PermissionGranted:
			return announce.PermissionGranted
		case announce.PermissionDenied:
			denied++
		}
	}
	if denied == len(h.clients) {
		return announce.PermissionDenied
	}
	return announce.PermissionDefault
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Websocket read error", "client_id", c.ID, "error", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Debug("Ignoring malformed client message", "client_id", c.ID, "error", err)
			continue
		}
		c.apply(msg)
	}
}

func (c *Client) apply(msg clientMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch msg.Type {
	case "visibility":
		if msg.Visible != nil {
			c.visible = *msg.Visible
		}
	case "permission":
		switch p := announce.Permission(msg.Permission); p {
		case announce.PermissionGranted, announce.PermissionDenied, announce.PermissionDefault:
			c.permission = p
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
