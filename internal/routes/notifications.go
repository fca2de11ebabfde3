package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/handlers"
)

func RegisterNotificationRoutes(router *mux.Router, d Deps) {
	notificationHandler := handlers.NewNotificationHandler(d.Notifications, d.Log.Named("notification-service"), d.RequestTimeout)

	protectedRouter := protected(router, d)
	protectedRouter.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkRead).Methods(http.MethodPut)
}
