package hub

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/google/uuid"

	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/metrics"
	"github.com/nikhil/taskflow/internal/models"
)

var (
	ErrUnknownConnection = errors.New("connection is not registered")
	ErrAddressMismatch   = errors.New("address does not belong to the authenticated user")
	ErrEmptyAddress      = errors.New("address is required")
)

// sendBuffer is the number of outbound frames queued per connection before
// new frames are dropped.
const sendBuffer = 256

// Hub tracks live connections and the address each one has joined.
//
// A connection moves Connected -> Joined(address) -> Disconnected. Joining
// again under another address replaces the previous binding, so a
// connection is bound to at most one address at a time.
type Hub struct {
	mu sync.RWMutex

	// connection id -> client, every live connection
	clients map[string]*Client

	// address -> connection id -> client, joined connections only
	rooms map[string]map[string]*Client

	log *logger.Logger
}

// Client represents a WebSocket connection
type Client struct {
	ID  string
	Hub *Hub

	// The websocket connection. Nil for connections driven in-process.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// Authenticated identity. An empty Email lets the client join any address.
	UserID int64
	Email  string

	// guarded by Hub.mu
	address string
}

// New creates an empty hub.
func New(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     log,
	}
}

// NewClient creates a client with a fresh connection id. It is not
// registered until Connect is called.
func (h *Hub) NewClient(conn *websocket.Conn, userID int64, email string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		UserID: userID,
		Email:  models.NormalizeEmail(email),
	}
}

// Connect registers a client in the Connected state.
func (h *Hub) Connect(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	metrics.Connections.Set(float64(len(h.clients)))
	h.mu.Unlock()

	h.log.Debug("Connection registered", "conn_id", c.ID, "user_id", c.UserID)
}

// Join binds a connection to address, replacing any previous binding.
func (h *Hub) Join(connID, address string) error {
	address = models.NormalizeEmail(address)
	if address == "" {
		return ErrEmptyAddress
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return ErrUnknownConnection
	}
	if c.Email != "" && c.Email != address {
		return ErrAddressMismatch
	}

	if c.address == address {
		return nil
	}
	h.unbindLocked(c)

	room, ok := h.rooms[address]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[address] = room
	}
	room[c.ID] = c
	c.address = address
	metrics.JoinedSessions.Inc()

	h.log.Debug("Connection joined", "conn_id", connID, "address", address)
	return nil
}

// Leave unbinds a connection from its address. The connection stays
// registered.
func (h *Hub) Leave(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[connID]; ok {
		h.unbindLocked(c)
	}
}

// Disconnect removes a connection and all of its bindings and closes its
// send channel. Calling it more than once is a no-op.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.unbindLocked(c)
	delete(h.clients, connID)
	close(c.Send)
	metrics.Connections.Set(float64(len(h.clients)))
	h.mu.Unlock()

	h.log.Debug("Connection removed", "conn_id", connID, "user_id", c.UserID)
}

func (h *Hub) unbindLocked(c *Client) {
	if c.address == "" {
		return
	}
	if room, ok := h.rooms[c.address]; ok {
		delete(room, c.ID)
		if len(room) == 0 {
			delete(h.rooms, c.address)
		}
	}
	c.address = ""
	metrics.JoinedSessions.Dec()
}

// SessionsFor returns the ids of the connections currently joined under
// address.
func (h *Hub) SessionsFor(address string) []string {
	address = models.NormalizeEmail(address)

	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[address]
	ids := make([]string, 0, len(room))
	for id := range room {
		ids = append(ids, id)
	}
	return ids
}

// AddressOf returns the address a connection is joined under, if any.
func (h *Hub) AddressOf(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok || c.address == "" {
		return "", false
	}
	return c.address, true
}

// Deliver queues payload on every connection joined under address and
// returns how many accepted it. A connection whose buffer is full misses
// the frame.
func (h *Hub) Deliver(address string, payload []byte) int {
	address = models.NormalizeEmail(address)

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.rooms[address] {
		select {
		case c.Send <- payload:
			delivered++
		default:
			h.log.Warn("Send buffer full, dropping frame", "conn_id", c.ID, "address", address)
		}
	}
	return delivered
}

// sendTo queues a frame for a single connection if it is still registered.
func (h *Hub) sendTo(c *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[c.ID] != c {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every connection.
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Disconnect(id)
	}
}
