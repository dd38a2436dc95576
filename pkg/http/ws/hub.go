package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub manages WebSocket connections and broadcasts room events to
// subscribed clients. Connections are keyed by an opaque client id so
// the same player can watch from several devices.
type Hub struct {
	mu            sync.RWMutex
	connections   map[string]*Connection // client id -> connection
	subscriptions map[string][]string    // room id -> client ids
	logger        zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections:   make(map[string]*Connection),
		subscriptions: make(map[string][]string),
		logger:        logger,
	}
}

// Register adds a connection for a client, replacing any previous one.
func (h *Hub) Register(clientID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[clientID]; exists {
		old.Close()
	}
	h.connections[clientID] = conn
	h.logger.Info().Str("client_id", clientID).Msg("ws connection registered")
}

// Unregister removes a connection and all its room subscriptions.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[clientID]; exists {
		conn.Close()
		delete(h.connections, clientID)
	}
	for roomID, clients := range h.subscriptions {
		h.subscriptions[roomID] = removeClient(clients, clientID)
		if len(h.subscriptions[roomID]) == 0 {
			delete(h.subscriptions, roomID)
		}
	}
}

// Subscribe attaches a client to a room's event stream.
func (h *Hub) Subscribe(roomID, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range h.subscriptions[roomID] {
		if id == clientID {
			return
		}
	}
	h.subscriptions[roomID] = append(h.subscriptions[roomID], clientID)
}

// Unsubscribe detaches a client from a room's event stream.
func (h *Hub) Unsubscribe(roomID, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscriptions[roomID] = removeClient(h.subscriptions[roomID], clientID)
	if len(h.subscriptions[roomID]) == 0 {
		delete(h.subscriptions, roomID)
	}
}

// BroadcastToRoom sends a message to every client watching a room.
func (h *Hub) BroadcastToRoom(roomID string, msg Message) {
	h.mu.RLock()
	clients := append([]string(nil), h.subscriptions[roomID]...)
	h.mu.RUnlock()

	for _, clientID := range clients {
		h.mu.RLock()
		conn, exists := h.connections[clientID]
		h.mu.RUnlock()
		if !exists {
			continue
		}
		if err := conn.Send(msg); err != nil {
			h.logger.Warn().Err(err).Str("client_id", clientID).Msg("room broadcast send failed")
		}
	}
}

func removeClient(clients []string, clientID string) []string {
	for i, id := range clients {
		if id == clientID {
			return append(clients[:i], clients[i+1:]...)
		}
	}
	return clients
}

// Connection represents a WebSocket connection with a send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 64),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends messages from the send queue.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("ws write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump receives messages and calls the handler until the peer goes
// away. The read deadline is extended on every pong.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("ws read error")
			}
			break
		}
		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("ws message handler error")
		}
	}
}

var (
	ErrConnectionClosed = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull    = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
