package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/handlers"
)

func RegisterProjectRoutes(router *mux.Router, d Deps) {
	projectHandler := handlers.NewProjectHandler(d.Members, d.Log.Named("project-service"), d.RequestTimeout)

	protectedRouter := protected(router, d)
	protectedRouter.HandleFunc("/add-project", projectHandler.CreateProject).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/projects/{id:[0-9]+}", projectHandler.GetProject).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/projects/{id:[0-9]+}/members", projectHandler.ListMembers).Methods(http.MethodGet)
}
