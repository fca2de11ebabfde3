package notification

import (
	"github.com/nikhil/taskflow/internal/hub"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/metrics"
)

// Deliverer is the part of the session registry the router needs.
type Deliverer interface {
	Deliver(address string, payload []byte) int
}

// Router pushes real-time notifications to the live sessions of an address.
// Delivery is at most once: nothing is queued or retried.
type Router struct {
	sessions Deliverer
	log      *logger.Logger
}

func NewRouter(sessions Deliverer, log *logger.Logger) *Router {
	return &Router{sessions: sessions, log: log}
}

// Payload is the data of a newNotification event.
type Payload struct {
	Message string `json:"message"`
}

// Push sends message to every session joined under address and returns how
// many sessions received it. Zero means the user is offline, which is not
// an error.
func (r *Router) Push(address, message string) int {
	frame, err := hub.Encode(hub.EventNewNotification, Payload{Message: message})
	if err != nil {
		r.log.Error("Failed to encode notification", "address", address, "error", err)
		return 0
	}

	delivered := r.sessions.Deliver(address, frame)
	if delivered == 0 {
		metrics.NotificationPushes.WithLabelValues(metrics.OutcomeOffline).Inc()
		r.log.Debug("No live session for notification", "address", address)
		return 0
	}

	metrics.NotificationPushes.WithLabelValues(metrics.OutcomeDelivered).Add(float64(delivered))
	r.log.Debug("Notification pushed", "address", address, "sessions", delivered)
	return delivered
}
