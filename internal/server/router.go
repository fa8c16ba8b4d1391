package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trolleybot-systems/trolleybot/internal/handlers"
	"github.com/trolleybot-systems/trolleybot/internal/middleware"
)

// NewRouter constructs a ServeMux with the webhook and operational routes
// registered.
func NewRouter(h *handlers.EventsHandler) http.Handler {
	mux := http.NewServeMux()

	// Slack Events API endpoint
	mux.HandleFunc("/slack/events", h.HandleEvents)

	// Health endpoints
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
