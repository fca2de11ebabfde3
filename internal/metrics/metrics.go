//nolint:gochecknoglobals
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
	OutcomeOffline   = "offline"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskflow",
		Name:      "ws_connections",
		Help:      "The number of live websocket connections",
	})

	JoinedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskflow",
		Name:      "ws_joined_sessions",
		Help:      "The number of websocket connections bound to an address",
	})

	NotificationPushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskflow",
		Name:      "notification_pushes_total",
		Help:      "Real-time notification pushes by outcome",
	}, []string{"outcome"})

	Invitations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskflow",
		Name:      "invitations_total",
		Help:      "Invitation operations by result code",
	}, []string{"op", "code"})

	httpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskflow",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request latency labelled by the mux route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		httpRequestsDuration.With(prometheus.Labels{
			"route":  route,
			"method": r.Method,
			"code":   strconv.Itoa(rec.status),
		}).Observe(time.Since(start).Seconds())
	})
}
