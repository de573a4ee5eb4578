// internal/notification/hub.go

package notification

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Hub fans notifications out to connected websocket clients. One connection
// per user; a new connection replaces the old one.
type Hub struct {
	clients    map[int64]*client
	clientsMux sync.RWMutex

	register   chan *client
	unregister chan *client
	push       chan pushMessage

	ctx    context.Context
	cancel context.CancelFunc
}

type pushMessage struct {
	userID  int64
	payload []byte
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[int64]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		push:       make(chan pushMessage, 256),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.push:
			h.deliver(msg)

		case <-h.ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Shutdown() {
	h.cancel()
}

// Push sends a notification to the user's live connection, if any. Offline
// users pick it up from the notification list on next fetch.
func (h *Hub) Push(userID int64, n *Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("Failed to marshal notification %d: %v", n.ID, err)
		return
	}

	select {
	case h.push <- pushMessage{userID: userID, payload: payload}:
	default:
		log.Printf("Notification hub push buffer full, dropping message for user %d", userID)
	}
}

func (h *Hub) registerClient(c *client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if old, exists := h.clients[c.userID]; exists {
		close(old.send)
		old.conn.Close()
	}

	h.clients[c.userID] = c
	log.Printf("User %d connected to notification stream. Total clients: %d", c.userID, len(h.clients))
}

func (h *Hub) unregisterClient(c *client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if current, exists := h.clients[c.userID]; exists && current == c {
		close(c.send)
		delete(h.clients, c.userID)
	}
}

func (h *Hub) deliver(msg pushMessage) {
	h.clientsMux.RLock()
	c, ok := h.clients[msg.userID]
	h.clientsMux.RUnlock()

	if !ok {
		return
	}

	select {
	case c.send <- msg.payload:
	default:
		// Slow consumer; drop the connection rather than block the hub.
		h.unregisterClient(c)
		c.conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for userID, c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, userID)
	}
}

// ServeConnection attaches an upgraded websocket connection to the hub.
func (h *Hub) ServeConnection(conn *websocket.Conn, userID int64) {
	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The stream is one-way; inbound frames are drained only to keep the
	// connection's control messages flowing.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", c.userID, err)
			}
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
