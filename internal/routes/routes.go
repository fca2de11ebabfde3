package routes

import (
	"database/sql"
	"time"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/hub"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/metrics"
	"github.com/nikhil/taskflow/internal/middleware"
	"github.com/nikhil/taskflow/internal/service/auth"
	"github.com/nikhil/taskflow/internal/service/invitation"
	"github.com/nikhil/taskflow/internal/service/membership"
	"github.com/nikhil/taskflow/internal/service/notification"
)

// Deps are the services the route modules wire into handlers.
type Deps struct {
	DB            *sql.DB
	Auth          *auth.AuthService
	Tokens        middleware.Authenticator
	Members       membership.Store
	Coordinator   *invitation.Coordinator
	Notifications *notification.Store
	Hub           *hub.Hub
	Log           *logger.Logger

	RequestTimeout time.Duration
	AllowedOrigins []string
}

// List of all route registration functions
var routeModules = []func(*mux.Router, Deps){
	RegisterAuthRoutes,
	RegisterProjectRoutes,
	RegisterInvitationRoutes,
	RegisterNotificationRoutes,
	RegisterWebSocketRoutes,
	RegisterOpsRoutes,
}

// RegisterAllRoutes builds the router with every module registered.
func RegisterAllRoutes(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(d.Log), metrics.Middleware)

	for _, register := range routeModules {
		register(router, d)
	}

	return router
}

// protected returns a subrouter whose routes require a bearer token.
func protected(router *mux.Router, d Deps) *mux.Router {
	sub := router.NewRoute().Subrouter()
	sub.Use(middleware.AuthMiddleware(d.Tokens), middleware.ResponseWrapperMiddleware)
	return sub
}
