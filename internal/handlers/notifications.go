package handlers

import (
	"net/http"
	"time"

	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/service/notification"
)

type NotificationHandler struct {
	Store   *notification.Store
	Log     *logger.Logger
	Timeout time.Duration
}

func NewNotificationHandler(store *notification.Store, log *logger.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{Store: store, Log: log, Timeout: timeout}
}

// List returns the caller's notifications. ?unread=true limits the result
// to unread ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	notifications, err := h.Store.ListForRecipient(ctx, id.Email, unreadOnly)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	notificationID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	if err := h.Store.MarkRead(ctx, notificationID, id.Email); err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
