package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/handlers"
	"github.com/nikhil/taskflow/internal/middleware"
)

// RegisterWebSocketRoutes registers all WebSocket related routes
func RegisterWebSocketRoutes(router *mux.Router, d Deps) {
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.AllowedOrigins, d.Log.Named("websocket"))

	// WebSocket endpoint with authentication via query parameter
	router.Handle("/ws", middleware.WebSocketAuthMiddleware(d.Tokens)(http.HandlerFunc(wsHandler.HandleWebSocket))).Methods(http.MethodGet)
}
