package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/models"
	"github.com/nikhil/taskflow/internal/service/invitation"
)

type InvitationHandler struct {
	Coordinator *invitation.Coordinator
	Log         *logger.Logger
	Timeout     time.Duration
}

func NewInvitationHandler(coordinator *invitation.Coordinator, log *logger.Logger, timeout time.Duration) *InvitationHandler {
	return &InvitationHandler{Coordinator: coordinator, Log: log, Timeout: timeout}
}

type resolveFunc func(ctx context.Context, invitationID, userID int64) (models.Invitation, error)

type inviteRequest struct {
	ProjectID int64  `json:"projectId"`
	UserEmail string `json:"userEmail"`
}

// Invite handles POST /invite.
func (h *InvitationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	var req inviteRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	inv, err := h.Coordinator.Invite(ctx, req.ProjectID, id.UserID, req.UserEmail)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, map[string]interface{}{
		"message":    "Invitation sent",
		"invitation": inv,
	})
}

// ListPending returns the caller's pending invitations.
func (h *InvitationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	invitations, err := h.Coordinator.ListPending(ctx, id.Email)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, invitations)
}

func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Coordinator.Accept)
}

func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Coordinator.Decline)
}

func (h *InvitationHandler) resolve(w http.ResponseWriter, r *http.Request, op resolveFunc) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	invitationID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	inv, err := op(ctx, invitationID, id.UserID)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, inv)
}
