package handlers

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/nikhil/taskflow/internal/hub"
	"github.com/nikhil/taskflow/internal/logger"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewWebSocketHandler creates a handler that registers upgraded connections
// with h. An empty allowedOrigins accepts any origin.
func NewWebSocketHandler(h *hub.Hub, allowedOrigins []string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		log: log,
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// HandleWebSocket upgrades the request and starts the connection pumps.
// The client then joins its own address with a join event.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Error upgrading connection", "user_id", id.UserID, "error", err)
		return
	}

	client := h.hub.NewClient(conn, id.UserID, id.Email)
	h.hub.Connect(client)
	log.Debug("Websocket connected", "user_id", id.UserID, "connection_id", client.ID)

	go client.WritePump()
	go client.ReadPump()
}
