package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/service/membership"
)

// ProjectHandler serves project and membership reads and project creation.
type ProjectHandler struct {
	Members membership.Store
	Log     *logger.Logger
	Timeout time.Duration
}

func NewProjectHandler(members membership.Store, log *logger.Logger, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{Members: members, Log: log, Timeout: timeout}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject creates a project owned by the caller.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	project, err := h.Members.CreateProject(ctx, req.Name, req.Description, id.UserID)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, project)
}

// ListProjects returns the projects the caller is a member of.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	projects, err := h.Members.ListProjectsForUser(ctx, id.UserID)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	project, err := h.Members.GetProject(ctx, projectID)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, project)
}

// ListMembers returns the members of a project. Only members may list them.
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	projectID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	if _, err := h.Members.GetProject(ctx, projectID); err != nil {
		respondWithError(w, log, err)
		return
	}
	if _, err := h.Members.MemberRole(ctx, projectID, id.UserID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.New(apperr.CodeForbidden, "you are not a member of this project")
		}
		respondWithError(w, log, err)
		return
	}

	members, err := h.Members.ListMembers(ctx, projectID)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, members)
}
