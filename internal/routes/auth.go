package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/handlers"
	"github.com/nikhil/taskflow/internal/middleware"
)

func RegisterAuthRoutes(router *mux.Router, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log.Named("auth"), d.RequestTimeout)

	// Public routes without auth middleware
	publicRouter := router.NewRoute().Subrouter()
	publicRouter.Use(middleware.ResponseWrapperMiddleware)
	publicRouter.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	publicRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	protectedRouter := protected(router, d)
	protectedRouter.HandleFunc("/user/profile", authHandler.Profile).Methods(http.MethodGet)
}
