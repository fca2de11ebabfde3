package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/handlers"
)

func RegisterInvitationRoutes(router *mux.Router, d Deps) {
	invitationHandler := handlers.NewInvitationHandler(d.Coordinator, d.Log.Named("invitation-service"), d.RequestTimeout)

	protectedRouter := protected(router, d)
	protectedRouter.HandleFunc("/invite", invitationHandler.Invite).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/invitations", invitationHandler.ListPending).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/invitations/{id:[0-9]+}/accept", invitationHandler.Accept).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/invitations/{id:[0-9]+}/decline", invitationHandler.Decline).Methods(http.MethodPost)
}
