package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterOpsRoutes registers the metrics and health endpoints.
func RegisterOpsRoutes(router *mux.Router, d Deps) {
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, body := http.StatusOK, map[string]interface{}{"status": "ok", "connections": d.Hub.Len()}
		if err := d.DB.PingContext(ctx); err != nil {
			d.Log.Warn("Health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable"}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}).Methods(http.MethodGet)
}
