package live

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blumn/internal/events"
)

// Frame is the wire format for messages pushed to browsers.
type Frame struct {
	Type    string          `json:"type"` // event, heartbeat
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans events out to connected browsers over WebSocket. The care
// recording handlers, the importer, and the overdue checker all publish
// to the event bus; every connected client sees the stream live.
type Hub struct {
	bus      *events.Bus
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client wraps one browser connection with its outbound queue.
type client struct {
	conn *websocket.Conn
	send chan Frame
	done chan struct{}
}

// NewHub creates a hub and subscribes it to the event bus.
func NewHub(bus *events.Bus) *Hub {
	h := &Hub{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}

	bus.Subscribe(h.broadcast)
	return h
}

// broadcast queues an event frame for every connected client. Clients
// whose queue is full are skipped rather than blocking the publisher.
func (h *Hub) broadcast(e events.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("[WS] Marshal event %s: %v", e.Type, err)
		return
	}
	frame := Frame{Type: "event", Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			log.Printf("[WS] Client queue full, dropping %s event", e.Type)
		}
	}
}

// HandleConnection is the HTTP handler that upgrades to WebSocket.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Frame, 64),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	log.Printf("[WS] Client connected (%d active)", n)

	go h.writeLoop(c)

	// Read loop blocks until the connection closes. Browsers only send
	// pongs; anything else is discarded.
	h.readLoop(c)

	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.done)
	}
	n = len(h.clients)
	h.mu.Unlock()

	log.Printf("[WS] Client disconnected (%d active)", n)
}

func (h *Hub) readLoop(c *client) {
	defer c.conn.Close()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}

// writeLoop drains the client's queue and keeps the connection alive
// with periodic pings.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(frame); err != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(
				websocket.PingMessage, nil,
				time.Now().Add(10*time.Second),
			); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

// ActiveConnections returns the number of connected clients.
func (h *Hub) ActiveConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll terminates all client connections.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.done)
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(5*time.Second),
		)
		c.conn.Close()
		delete(h.clients, c)
	}
}
