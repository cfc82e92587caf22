package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Rus1K7/Airport/internal/events"
	"github.com/gorilla/websocket"
)

// MessageType represents the type of WebSocket message.
type MessageType string

const (
	MessageTypeFlightStatus    MessageType = "flight_status"
	MessageTypeCheckInManifest MessageType = "checkin_manifest"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// allFlights is the subscription key of board-wide clients.
const allFlights = ""

// Message represents a WebSocket message.
type Message struct {
	Type           MessageType `json:"type"`
	FlightID       string      `json:"flightId"`
	From           string      `json:"from,omitempty"`
	Status         string      `json:"status,omitempty"`
	ScheduledTime  *time.Time  `json:"scheduledTime,omitempty"`
	SimulationTime time.Time   `json:"simulationTime"`
	Tickets        int         `json:"tickets,omitempty"`
	Timestamp      int64       `json:"timestamp"`
}

// Client represents a WebSocket client connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	flightID string
}

// Hub manages board subscribers keyed by flight. Clients subscribed
// without a flight receive every flight's updates.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.flightID] == nil {
				h.clients[client.flightID] = make(map[*Client]bool)
			}
			h.clients[client.flightID][client] = true
			h.logger.Debug("websocket client registered", "flightId", client.flightID, "total", len(h.clients[client.flightID]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Error("failed to marshal websocket message", "error", err)
				continue
			}

			h.mu.Lock()
			for _, key := range []string{message.FlightID, allFlights} {
				for client := range h.clients[key] {
					select {
					case client.send <- data:
					default:
						h.remove(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops a client; h.mu must be held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.flightID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	h.logger.Debug("websocket client unregistered", "flightId", client.flightID, "remaining", len(clients))
	if len(clients) == 0 {
		delete(h.clients, client.flightID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Name implements events.Sink.
func (h *Hub) Name() string { return "websocket" }

// Publish implements events.Sink by queueing a board update.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	msg := &Message{FlightID: e.FlightID, Timestamp: time.Now().UnixMilli()}
	switch e.Kind {
	case events.KindFlightStatusChanged:
		scheduled := e.Status.ScheduledTime
		msg.Type = MessageTypeFlightStatus
		msg.From = e.Status.From
		msg.Status = e.Status.Status
		msg.ScheduledTime = &scheduled
		msg.SimulationTime = e.Status.At
	case events.KindCheckInManifest:
		msg.Type = MessageTypeCheckInManifest
		msg.Tickets = len(e.Manifest.Tickets)
		msg.SimulationTime = e.Manifest.At
	default:
		return nil
	}

	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetClientCount returns the number of clients watching a flight; an
// empty id counts board-wide clients.
func (h *Hub) GetClientCount(flightID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[flightID])
}

// ServeHTTP upgrades the request and subscribes the connection to the
// flight named by the flightId query parameter, or to every flight.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 64),
		flightID: r.URL.Query().Get("flightId"),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
